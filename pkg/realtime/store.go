package realtime

import (
	"context"
	"sync"
	"time"
)

// Room holds state and a broadcaster for one room.
type Room[T any] struct {
	ID    string
	State T
	hub   *Broadcaster[string]
}

// RoomStore manages rooms, their broadcasters and their timing loops.
type RoomStore[T any] struct {
	mu    sync.RWMutex
	rooms map[string]*Room[T]
	loops map[string]context.CancelFunc
	wakes map[string]chan struct{}
}

// NewRoomStore creates an empty room store.
func NewRoomStore[T any]() *RoomStore[T] {
	return &RoomStore[T]{
		rooms: make(map[string]*Room[T]),
		loops: make(map[string]context.CancelFunc),
		wakes: make(map[string]chan struct{}),
	}
}

// Create adds a room with the given id and state, and a new Broadcaster.
func (s *RoomStore[T]) Create(id string, state T) *Room[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Room[T]{ID: id, State: state, hub: NewBroadcaster[string]()}
	s.rooms[id] = r
	return r
}

// Get returns the room by ID if it exists.
func (s *RoomStore[T]) Get(id string) (*Room[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Len reports the number of live rooms.
func (s *RoomStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Each calls fn for every room. fn must not call back into the store.
func (s *RoomStore[T]) Each(fn func(id string, state T)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, r := range s.rooms {
		fn(id, r.State)
	}
}

// Delete stops the room's loop, if any, closes its subscribers and forgets the room.
// It returns the removed room so the caller can tear down its state.
func (s *RoomStore[T]) Delete(id string) (*Room[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.loops[id]; ok {
		cancel()
		delete(s.loops, id)
		delete(s.wakes, id)
	}
	r, ok := s.rooms[id]
	delete(s.rooms, id)
	if ok && r.hub != nil {
		r.hub.Close()
	}
	return r, ok
}

// Publish notifies subscribers of the room's broadcaster.
func (s *RoomStore[T]) Publish(id string, event string) {
	s.mu.RLock()
	r, ok := s.rooms[id]
	s.mu.RUnlock()
	if !ok || r.hub == nil {
		return
	}
	r.hub.Publish(event)
}

// Broadcaster returns the broadcaster for the room, or nil if the room is unknown.
func (s *RoomStore[T]) Broadcaster(id string) *Broadcaster[string] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil
	}
	if r.hub == nil {
		r.hub = NewBroadcaster[string]()
	}
	return r.hub
}

// TickFunc is called by RunLoop to determine the next wake time and events to publish.
// stop true means exit the loop.
type TickFunc[T any] func(state T, now time.Time) (next time.Time, events []string, stop bool)

// RunLoop starts a timing loop for the room. If a loop already exists for id, it is only woken.
func (s *RoomStore[T]) RunLoop(id string, getState func() T, tick TickFunc[T]) {
	s.mu.Lock()
	if _, ok := s.loops[id]; ok {
		// Signal under the lock so a loop that is about to stop sees it.
		select {
		case s.wakes[id] <- struct{}{}:
		default:
		}
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	wake := make(chan struct{}, 1)
	s.loops[id] = cancel
	s.wakes[id] = wake
	s.mu.Unlock()

	go func() {
		defer cancel()

		for {
			if ctx.Err() != nil {
				return
			}
			state := getState()
			now := time.Now().UTC()
			next, events, stop := tick(state, now)
			// Publish before sleeping so the UI catches up as soon as state advances.
			for _, e := range events {
				s.Publish(id, e)
			}
			if stop {
				if s.release(id, wake) {
					return
				}
				continue
			}
			wait := time.Until(next)
			if wait < 0 {
				wait = 0
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			case <-wake:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				continue
			}
		}
	}()
}

// release unregisters a stopping loop unless a wake arrived in the meantime.
func (s *RoomStore[T]) release(id string, wake chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-wake:
		return false
	default:
	}
	if w, ok := s.wakes[id]; ok && w == wake {
		delete(s.loops, id)
		delete(s.wakes, id)
	}
	return true
}

// Looping reports whether a timing loop is active for the room.
func (s *RoomStore[T]) Looping(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.loops[id]
	return ok
}

// Wake unblocks the room's loop so it recomputes immediately.
func (s *RoomStore[T]) Wake(id string) {
	s.mu.RLock()
	wake, ok := s.wakes[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case wake <- struct{}{}:
	default:
	}
}
