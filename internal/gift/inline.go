package gift

import (
	"fmt"
	"sync"
	"time"

	"wintergreet/pkg/realtime"
)

// DefaultResetAfter is how long an inline gift stays open.
const DefaultResetAfter = 2 * time.Second

// State is an inline gift's reveal state.
type State int

const (
	Closed State = iota
	Opened
)

func (s State) String() string {
	if s == Opened {
		return "opened"
	}
	return "closed"
}

// Inline runs one Closed/Opened machine per gift. Opening arms that gift's
// own reset deadline; other gifts' deadlines are never touched.
type Inline struct {
	mu         sync.Mutex
	catalog    catalog
	resetAfter time.Duration
	opened     map[int]bool
	resets     *realtime.Deadlines[int]
	closed     bool
}

// NewInline creates a controller over items with every gift closed.
func NewInline(items []Item, resetAfter time.Duration) *Inline {
	if resetAfter <= 0 {
		resetAfter = DefaultResetAfter
	}
	return &Inline{
		catalog:    newCatalog(items),
		resetAfter: resetAfter,
		opened:     make(map[int]bool, len(items)),
		resets:     realtime.NewDeadlines[int](),
	}
}

// Click opens a closed gift and arms its reset. Clicking an opened gift is
// ignored. It reports whether the state changed.
func (c *Inline) Click(id int, now time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.catalog.lookup(id); !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownGift, id)
	}
	if c.closed || c.opened[id] {
		return false, nil
	}
	c.opened[id] = true
	c.resets.Arm(id, now.Add(c.resetAfter))
	return true, nil
}

// Advance closes every gift whose reset time has passed and returns their ids.
func (c *Inline) Advance(now time.Time) []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	ids := c.resets.Expire(now)
	for _, id := range ids {
		c.opened[id] = false
	}
	return ids
}

// NextWake returns when the next pending reset is due.
func (c *Inline) NextWake(now time.Time) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return time.Time{}, false
	}
	return c.resets.NextWake(now)
}

// State returns the current state of one gift.
func (c *Inline) State(id int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opened[id] {
		return Opened
	}
	return Closed
}

// ItemState pairs a gift with its current state.
type ItemState struct {
	Item  Item
	State State
}

// Snapshot returns every gift in configured order with its state.
func (c *Inline) Snapshot() []ItemState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ItemState, 0, len(c.catalog.items))
	for _, it := range c.catalog.items {
		st := Closed
		if c.opened[it.ID] {
			st = Opened
		}
		out = append(out, ItemState{Item: it, State: st})
	}
	return out
}

// Close tears the controller down. Pending resets are dropped and later
// clicks or timer fires leave the state alone.
func (c *Inline) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.resets.Clear()
}
