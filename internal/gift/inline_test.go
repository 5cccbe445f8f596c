package gift_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wintergreet/internal/gift"
)

func TestInline_ClickOpensAndResets(t *testing.T) {
	now := time.Date(2025, 12, 24, 20, 0, 0, 0, time.UTC)
	c := gift.NewInline(gift.DefaultItems(), 2*time.Second)

	changed, err := c.Click(1, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, gift.Opened, c.State(1))

	next, ok := c.NextWake(now)
	require.True(t, ok)
	assert.Equal(t, now.Add(2*time.Second), next)

	// Not yet due.
	assert.Empty(t, c.Advance(now.Add(1999*time.Millisecond)))
	assert.Equal(t, gift.Opened, c.State(1))

	assert.Equal(t, []int{1}, c.Advance(now.Add(2*time.Second)))
	assert.Equal(t, gift.Closed, c.State(1))

	_, ok = c.NextWake(now.Add(2 * time.Second))
	assert.False(t, ok, "no timers left")

	// Can be reopened.
	changed, err = c.Click(1, now.Add(3*time.Second))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestInline_ClickWhileOpenedIsIgnored(t *testing.T) {
	now := time.Date(2025, 12, 24, 20, 0, 0, 0, time.UTC)
	c := gift.NewInline(gift.DefaultItems(), 2*time.Second)

	_, _ = c.Click(0, now)
	changed, err := c.Click(0, now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, gift.Opened, c.State(0))

	// The reset is still the one armed by the first click.
	next, _ := c.NextWake(now.Add(time.Second))
	assert.Equal(t, now.Add(2*time.Second), next)
	assert.Equal(t, []int{0}, c.Advance(now.Add(2*time.Second)))
}

func TestInline_TimersAreIndependent(t *testing.T) {
	now := time.Date(2025, 12, 24, 20, 0, 0, 0, time.UTC)
	c := gift.NewInline(gift.DefaultItems(), 2*time.Second)

	_, _ = c.Click(0, now)
	_, _ = c.Click(2, now.Add(500*time.Millisecond))

	assert.Equal(t, []int{0}, c.Advance(now.Add(2*time.Second)))
	assert.Equal(t, gift.Closed, c.State(0))
	assert.Equal(t, gift.Opened, c.State(2))

	assert.Equal(t, []int{2}, c.Advance(now.Add(2500*time.Millisecond)))
	assert.Equal(t, gift.Closed, c.State(2))
}

func TestInline_UnknownGift(t *testing.T) {
	c := gift.NewInline(gift.DefaultItems(), 0)
	_, err := c.Click(99, time.Now())
	assert.ErrorIs(t, err, gift.ErrUnknownGift)
}

func TestInline_CloseIgnoresLateTimers(t *testing.T) {
	now := time.Date(2025, 12, 24, 20, 0, 0, 0, time.UTC)
	c := gift.NewInline(gift.DefaultItems(), 2*time.Second)
	_, _ = c.Click(3, now)

	c.Close()

	assert.Nil(t, c.Advance(now.Add(time.Minute)))
	_, ok := c.NextWake(now)
	assert.False(t, ok)
	changed, err := c.Click(1, now)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestInline_Snapshot(t *testing.T) {
	now := time.Now()
	c := gift.NewInline(gift.DefaultItems(), time.Second)
	_, _ = c.Click(2, now)

	snap := c.Snapshot()
	require.Len(t, snap, 4)
	for i, s := range snap {
		assert.Equal(t, i, s.Item.ID)
		if s.Item.ID == 2 {
			assert.Equal(t, gift.Opened, s.State)
		} else {
			assert.Equal(t, gift.Closed, s.State)
		}
	}
	assert.Equal(t, "opened", gift.Opened.String())
	assert.Equal(t, "closed", gift.Closed.String())
}
