package realtime

import (
	"sort"
	"time"
)

// Deadlines tracks one pending expiry per key. It holds no domain state;
// the owner reacts to Expire(now) by updating its own state, the same way
// a round schedule only reports that time has run out.
//
// Deadlines is not safe for concurrent use; the owner guards it.
type Deadlines[K comparable] struct {
	at map[K]time.Time
}

// NewDeadlines creates an empty deadline set.
func NewDeadlines[K comparable]() *Deadlines[K] {
	return &Deadlines[K]{at: make(map[K]time.Time)}
}

// Arm schedules key to expire at the given time, replacing any earlier schedule.
func (d *Deadlines[K]) Arm(key K, at time.Time) {
	d.at[key] = at
}

// Pending reports whether key has an unexpired schedule.
func (d *Deadlines[K]) Pending(key K) bool {
	_, ok := d.at[key]
	return ok
}

// Len returns the number of pending keys.
func (d *Deadlines[K]) Len() int {
	return len(d.at)
}

// NextWake returns the earliest pending expiry. If nothing is pending it
// returns (zero, false). Expiries already in the past are reported as now.
func (d *Deadlines[K]) NextWake(now time.Time) (time.Time, bool) {
	var next time.Time
	for _, at := range d.at {
		if next.IsZero() || at.Before(next) {
			next = at
		}
	}
	if next.IsZero() {
		return time.Time{}, false
	}
	if next.Before(now) {
		return now, true
	}
	return next, true
}

// Expire removes and returns every key whose expiry is at or before now,
// ordered by expiry time.
func (d *Deadlines[K]) Expire(now time.Time) []K {
	type due struct {
		key K
		at  time.Time
	}
	var expired []due
	for key, at := range d.at {
		if !at.After(now) {
			expired = append(expired, due{key: key, at: at})
			delete(d.at, key)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].at.Before(expired[j].at)
	})
	keys := make([]K, 0, len(expired))
	for _, e := range expired {
		keys = append(keys, e.key)
	}
	return keys
}

// Clear drops every pending expiry.
func (d *Deadlines[K]) Clear() {
	clear(d.at)
}
