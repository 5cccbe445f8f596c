package realtime

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRoomStore(t *testing.T) {
	s := NewRoomStore[string]()
	if s == nil {
		t.Fatal("NewRoomStore returned nil")
	}
}

func TestRoomStore_Create_Get(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("room1", "state1")
	room, ok := s.Get("room1")
	if !ok {
		t.Fatal("Get returned false for existing room")
	}
	if room.ID != "room1" {
		t.Errorf("room ID %q, want room1", room.ID)
	}
	if room.State != "state1" {
		t.Errorf("room State %q, want state1", room.State)
	}

	_, ok = s.Get("nonexistent")
	if ok {
		t.Error("Get should return false for missing ID")
	}
}

func TestRoomStore_Publish(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("r1", "x")
	hub := s.Broadcaster("r1")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s.Publish("r1", "event1")
	got := <-ch
	if got != "event1" {
		t.Errorf("got %q, want event1", got)
	}
}

func TestRoomStore_Broadcaster_UnknownRoom(t *testing.T) {
	s := NewRoomStore[string]()
	if hub := s.Broadcaster("missing"); hub != nil {
		t.Error("Broadcaster should be nil for unknown room")
	}
	// Publishing to an unknown room is a no-op.
	s.Publish("missing", "x")
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
}

func TestRoomStore_Delete(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("r1", "x")
	room, ok := s.Delete("r1")
	if !ok || room.State != "x" {
		t.Fatalf("Delete returned %v, %v", room, ok)
	}
	if _, ok := s.Get("r1"); ok {
		t.Error("room should be gone after Delete")
	}
	if _, ok := s.Delete("r1"); ok {
		t.Error("second Delete should report false")
	}
}

func TestRoomStore_Delete_ClosesSubscribers(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("r1", "x")
	ch := s.Broadcaster("r1").Subscribe()
	s.Delete("r1")
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel, got event")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber still open after Delete")
	}
}

func TestRoomStore_Wake_NoPanicWhenNoLoop(t *testing.T) {
	s := NewRoomStore[string]()
	s.Wake("nonexistent")
}

func TestRoomStore_RunLoop_PublishesAndStops(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("r1", "x")
	hub := s.Broadcaster("r1")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	var calls atomic.Int32
	tick := func(_ string, now time.Time) (time.Time, []string, bool) {
		if calls.Add(1) == 1 {
			return now.Add(10 * time.Millisecond), nil, false
		}
		return time.Time{}, []string{"done"}, true
	}
	s.RunLoop("r1", func() string { return "x" }, tick)

	select {
	case got := <-ch:
		if got != "done" {
			t.Errorf("got %q, want done", got)
		}
	case <-time.After(time.Second):
		t.Fatal("loop did not publish")
	}

	deadline := time.Now().Add(time.Second)
	for s.Looping("r1") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.Looping("r1") {
		t.Error("loop should unregister after stop")
	}
}

func TestRoomStore_Delete_CancelsLoop(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("r1", "x")
	tick := func(_ string, now time.Time) (time.Time, []string, bool) {
		return now.Add(time.Hour), nil, false
	}
	s.RunLoop("r1", func() string { return "x" }, tick)
	if !s.Looping("r1") {
		t.Fatal("loop should be registered")
	}
	s.Delete("r1")
	if s.Looping("r1") {
		t.Error("Delete should cancel the loop")
	}
}

func TestRoomStore_Each(t *testing.T) {
	s := NewRoomStore[int]()
	s.Create("a", 1)
	s.Create("b", 2)
	sum := 0
	s.Each(func(_ string, v int) { sum += v })
	if sum != 3 {
		t.Errorf("sum %d, want 3", sum)
	}
}
