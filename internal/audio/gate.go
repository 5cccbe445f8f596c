package audio

import (
	"log"
	"sync"
)

// Gate makes a best-effort playback attempt and retries it only when the
// user produces a qualifying input, until the first success. After that it
// never calls play again.
type Gate struct {
	mu       sync.Mutex
	play     func() error
	done     bool
	attempts int
	lastErr  error
}

// NewGate wraps a playback attempt.
func NewGate(play func() error) *Gate {
	return &Gate{play: play}
}

// Attempt tries to play unless playback already started. It reports whether
// playback is running.
func (g *Gate) Attempt() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return true
	}
	g.attempts++
	if err := g.play(); err != nil {
		g.lastErr = err
		log.Printf("audio playback blocked, waiting for input attempt=%d err=%v", g.attempts, err)
		return false
	}
	g.done = true
	g.lastErr = nil
	return true
}

// OnInput is called for each pointer or key input; it retries a blocked start.
func (g *Gate) OnInput() bool {
	return g.Attempt()
}

// Done reports whether playback started.
func (g *Gate) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

// Attempts returns how many times play was called.
func (g *Gate) Attempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts
}

// Err returns the most recent failure, cleared on success.
func (g *Gate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}
