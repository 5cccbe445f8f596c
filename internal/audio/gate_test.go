package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_StopsAfterFirstSuccess(t *testing.T) {
	calls := 0
	blocked := true
	g := NewGate(func() error {
		calls++
		if blocked {
			return errors.New("autoplay blocked")
		}
		return nil
	})

	assert.False(t, g.Attempt(), "startup attempt is blocked")
	assert.False(t, g.Done())
	assert.EqualError(t, g.Err(), "autoplay blocked")

	assert.False(t, g.OnInput())
	assert.Equal(t, 2, calls)

	blocked = false
	assert.True(t, g.OnInput())
	assert.True(t, g.Done())
	assert.NoError(t, g.Err())

	// No more attempts once playing.
	assert.True(t, g.OnInput())
	assert.True(t, g.Attempt())
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, g.Attempts())
}

func TestGate_ImmediateSuccess(t *testing.T) {
	calls := 0
	g := NewGate(func() error { calls++; return nil })
	assert.True(t, g.Attempt())
	assert.True(t, g.OnInput())
	assert.Equal(t, 1, calls)
}

func TestChime_RingBeforeStartIsSilent(t *testing.T) {
	c := NewChime(880)
	c.Ring()
}
