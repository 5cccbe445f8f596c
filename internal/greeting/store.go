package greeting

import (
	"errors"
	"time"

	"wintergreet/internal/config"
	"wintergreet/internal/gift"
	"wintergreet/internal/scene"
	"wintergreet/pkg/realtime"
)

// Event names published on a session's broadcaster.
const (
	EventGifts  = "gifts"
	EventLights = "lights"
)

// ErrNoSession is returned for ids the store does not hold.
var ErrNoSession = errors.New("session not found")

// Store holds sessions and delegates to realtime.RoomStore for broadcast
// and for the per-session reset loop.
type Store struct {
	cfg *config.Config
	src scene.Source
	r   *realtime.RoomStore[*Session]
}

// NewStore creates an in-memory session store for the given scene config.
func NewStore(cfg *config.Config) *Store {
	return &Store{cfg: cfg, src: scene.DefaultSource, r: realtime.NewRoomStore[*Session]()}
}

// Config returns the scene configuration sessions are built from.
func (s *Store) Config() *config.Config {
	return s.cfg
}

// CreateSession builds a scene for a viewport of the given width and
// subscribes its light strand to the session's viewport signal.
func (s *Store) CreateSession(width int) *Session {
	sess := newSession(s.cfg, width, s.src, time.Now().UTC())
	id := sess.ID
	// Wired before the room is visible so a concurrent Close always stops it.
	sess.stopLights = sess.Lights.Follow(sess.viewport, func([]scene.Light) {
		s.r.Publish(id, EventLights)
	})
	s.r.Create(id, sess)
	return sess
}

// GetSession returns a session by ID if it exists.
func (s *Store) GetSession(id string) (*Session, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.r.Len()
}

// Broadcaster returns the UI event broadcaster for a session.
func (s *Store) Broadcaster(id string) *realtime.Broadcaster[string] {
	return s.r.Broadcaster(id)
}

// Publish notifies a session's subscribers with a typed event.
func (s *Store) Publish(id string, event string) {
	s.r.Publish(id, event)
}

// Resize delivers a viewport width signal to the session's light strand.
func (s *Store) Resize(id string, width int) error {
	sess, ok := s.GetSession(id)
	if !ok {
		return ErrNoSession
	}
	sess.Touch(time.Now().UTC())
	sess.viewport.Publish(width)
	return nil
}

// OpenGift routes a gift click to the session's controller: inline gifts
// open and arm their reset, modal gifts become the selection.
func (s *Store) OpenGift(id string, giftID int, now time.Time) error {
	sess, ok := s.GetSession(id)
	if !ok {
		return ErrNoSession
	}
	sess.Touch(now)
	switch {
	case sess.Inline != nil:
		changed, err := sess.Inline.Click(giftID, now)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		s.EnsureResetLoop(id)
	default:
		if err := sess.Modal.Select(giftID); err != nil {
			return err
		}
	}
	s.r.Publish(id, EventGifts)
	return nil
}

// Press routes a press on the modal. It reports whether the modal closed.
func (s *Store) Press(id string, target gift.Target) (bool, error) {
	sess, ok := s.GetSession(id)
	if !ok {
		return false, ErrNoSession
	}
	sess.Touch(time.Now().UTC())
	if sess.Modal == nil {
		return false, nil
	}
	if !sess.Modal.Press(target) {
		return false, nil
	}
	s.r.Publish(id, EventGifts)
	return true, nil
}

// EnsureResetLoop starts the inline reset loop for a session if not already
// running, or wakes it so it picks up a newly armed reset.
func (s *Store) EnsureResetLoop(id string) {
	getState := func() *Session {
		room, ok := s.r.Get(id)
		if !ok {
			return nil
		}
		return room.State
	}
	tick := func(sess *Session, now time.Time) (time.Time, []string, bool) {
		if sess == nil || sess.Inline == nil {
			return time.Time{}, nil, true
		}
		var events []string
		if closed := sess.Inline.Advance(now); len(closed) > 0 {
			events = []string{EventGifts}
		}
		next, ok := sess.Inline.NextWake(now)
		if !ok {
			return time.Time{}, events, true
		}
		return next, events, false
	}
	s.r.RunLoop(id, getState, tick)
}

// Close tears a session down: the reset loop is cancelled, the strand stops
// listening for viewport signals and late timer fires are ignored.
func (s *Store) Close(id string) bool {
	room, ok := s.r.Delete(id)
	if !ok {
		return false
	}
	room.State.close()
	return true
}

// Sweep closes sessions idle since before cutoff and returns how many it closed.
func (s *Store) Sweep(cutoff time.Time) int {
	var stale []string
	s.r.Each(func(id string, sess *Session) {
		if sess.LastSeen().Before(cutoff) {
			stale = append(stale, id)
		}
	})
	closed := 0
	for _, id := range stale {
		if s.Close(id) {
			closed++
		}
	}
	return closed
}
