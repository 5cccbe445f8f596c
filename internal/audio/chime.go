package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Chime plays short sine tones on the default output device.
type Chime struct {
	freq float64

	mu    sync.Mutex
	ready bool
}

// NewChime creates a chime pitched at freq Hz. Nothing touches the device
// until Start.
func NewChime(freq float64) *Chime {
	return &Chime{freq: freq}
}

// Start opens the speaker and plays a short rising greeting. It fails when
// no output device is available; callers put it behind a Gate.
func (c *Chime) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("open speaker: %w", err)
		}
		c.ready = true
	}
	var notes []beep.Streamer
	for _, ratio := range []float64{1, 1.25, 1.5} {
		tone, err := generators.SineTone(sampleRate, c.freq*ratio)
		if err != nil {
			return fmt.Errorf("tone %g Hz: %w", c.freq*ratio, err)
		}
		notes = append(notes, beep.Take(sampleRate.N(120*time.Millisecond), tone))
	}
	speaker.Play(beep.Seq(notes...))
	return nil
}

// Ring plays one short tone if the speaker is open.
func (c *Chime) Ring() {
	c.mu.Lock()
	ready := c.ready
	c.mu.Unlock()
	if !ready {
		return
	}
	tone, err := generators.SineTone(sampleRate, c.freq*2)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(80*time.Millisecond), tone))
}
