package scene

import (
	"sync"
	"sync/atomic"

	"wintergreet/pkg/realtime"
)

// StrandSpec configures a light string.
type StrandSpec struct {
	Tiers   Tiers
	Curve   Curve
	Palette []string
	Delay   Range
}

// DefaultStrandSpec returns a sagging 40-unit arc over the default tiers.
func DefaultStrandSpec() StrandSpec {
	return StrandSpec{
		Tiers:   DefaultTiers(),
		Curve:   Curve{Shape: ShapeSag, Depth: 40},
		Palette: DefaultPalette,
		Delay:   Range{Min: 0, Max: 2},
	}
}

// Strand owns the lights currently on display. It recomputes the whole
// list when a viewport signal moves it into a different count tier.
type Strand struct {
	spec StrandSpec
	src  Source

	mu     sync.Mutex
	count  int
	lights atomic.Pointer[[]Light]
}

// NewStrand lays out the strand for the initial viewport width.
func NewStrand(spec StrandSpec, width int, src Source) *Strand {
	if src == nil {
		src = DefaultSource
	}
	s := &Strand{spec: spec, src: src}
	s.mu.Lock()
	s.layoutLocked(spec.Tiers.Count(width))
	s.mu.Unlock()
	return s
}

// Lights returns the current bulbs. Callers must not modify the slice.
func (s *Strand) Lights() []Light {
	p := s.lights.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Count returns the current bulb count.
func (s *Strand) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Resize re-derives the count from width and recomputes the bulbs when the
// tier changed. It reports whether the lights were replaced.
func (s *Strand) Resize(width int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := s.spec.Tiers.Count(width)
	if count == s.count {
		return false
	}
	s.layoutLocked(count)
	return true
}

func (s *Strand) layoutLocked(count int) {
	lights := GenerateLights(count, s.spec.Curve, s.spec.Palette, s.spec.Delay, s.src)
	s.count = count
	s.lights.Store(&lights)
}

// Follow subscribes the strand to a feed of viewport widths. onChange, if
// set, runs after each recompute. The returned stop function unsubscribes
// and waits for the listener to exit; it is safe to call more than once.
func (s *Strand) Follow(hub *realtime.Broadcaster[int], onChange func([]Light)) (stop func()) {
	sub := hub.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for width := range sub {
			if s.Resize(width) && onChange != nil {
				onChange(s.Lights())
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			hub.Unsubscribe(sub)
			<-done
		})
	}
}
