package greeting

import (
	"errors"
	"testing"
	"time"

	"wintergreet/internal/config"
	"wintergreet/internal/gift"
)

func inlineConfig(reset time.Duration) *config.Config {
	cfg := config.Default()
	cfg.Variant = string(gift.VariantInline)
	cfg.Gifts.ResetAfter = reset
	return cfg
}

func waitEvent(t *testing.T, ch chan string, want string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestNewStore(t *testing.T) {
	s := NewStore(config.Default())
	if s == nil {
		t.Fatal("NewStore returned nil")
	}
	if s.Config() == nil {
		t.Fatal("Config returned nil")
	}
}

func TestStore_CreateSession_GetSession(t *testing.T) {
	cfg := config.Default()
	s := NewStore(cfg)
	sess := s.CreateSession(1280)
	defer s.Close(sess.ID)

	if sess.ID == "" {
		t.Error("session ID is empty")
	}
	if got := len(sess.Snow.Particles()); got != cfg.Snow.Count {
		t.Errorf("snow %d, want %d", got, cfg.Snow.Count)
	}
	if got := len(sess.Stars.Particles()); got != cfg.Stars.Count {
		t.Errorf("stars %d, want %d", got, cfg.Stars.Count)
	}
	if got := sess.Lights.Count(); got != cfg.Lights.Wide {
		t.Errorf("lights %d, want %d", got, cfg.Lights.Wide)
	}
	if sess.Modal == nil || sess.Inline != nil {
		t.Error("default config should build the modal controller only")
	}

	got, ok := s.GetSession(sess.ID)
	if !ok || got != sess {
		t.Error("GetSession should return the created session")
	}
	if _, ok := s.GetSession("nonexistent"); ok {
		t.Error("GetSession should return false for missing ID")
	}
}

func TestStore_ResizePublishesLights(t *testing.T) {
	s := NewStore(config.Default())
	sess := s.CreateSession(400)
	defer s.Close(sess.ID)

	hub := s.Broadcaster(sess.ID)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	if err := s.Resize(sess.ID, 1600); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	waitEvent(t, ch, EventLights)
	if got := len(sess.Lights.Lights()); got != 28 {
		t.Errorf("lights %d, want 28", got)
	}

	if err := s.Resize("nonexistent", 100); !errors.Is(err, ErrNoSession) {
		t.Errorf("err %v, want ErrNoSession", err)
	}
}

func TestStore_ModalFlow(t *testing.T) {
	s := NewStore(config.Default())
	sess := s.CreateSession(1024)
	defer s.Close(sess.ID)

	hub := s.Broadcaster(sess.ID)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	now := time.Now().UTC()
	if err := s.OpenGift(sess.ID, 1, now); err != nil {
		t.Fatalf("OpenGift: %v", err)
	}
	if err := s.OpenGift(sess.ID, 3, now); err != nil {
		t.Fatalf("OpenGift: %v", err)
	}
	waitEvent(t, ch, EventGifts)

	snap := sess.Snapshot()
	if snap.Selected == nil || snap.Selected.ID != 3 {
		t.Fatalf("selected %+v, want gift 3", snap.Selected)
	}

	closed, err := s.Press(sess.ID, gift.TargetContent)
	if err != nil || closed {
		t.Errorf("content press closed=%v err=%v, want false nil", closed, err)
	}
	closed, err = s.Press(sess.ID, gift.TargetOverlay)
	if err != nil || !closed {
		t.Errorf("overlay press closed=%v err=%v, want true nil", closed, err)
	}
	if sess.Snapshot().Selected != nil {
		t.Error("selection should be cleared")
	}

	if err := s.OpenGift(sess.ID, 42, now); !errors.Is(err, gift.ErrUnknownGift) {
		t.Errorf("err %v, want ErrUnknownGift", err)
	}
}

func TestStore_InlineAutoReset(t *testing.T) {
	s := NewStore(inlineConfig(50 * time.Millisecond))
	sess := s.CreateSession(1024)
	defer s.Close(sess.ID)

	hub := s.Broadcaster(sess.ID)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	if err := s.OpenGift(sess.ID, 2, time.Now().UTC()); err != nil {
		t.Fatalf("OpenGift: %v", err)
	}
	if sess.Inline.State(2) != gift.Opened {
		t.Fatal("gift should be opened")
	}
	waitEvent(t, ch, EventGifts) // opened
	waitEvent(t, ch, EventGifts) // reset by the loop
	if sess.Inline.State(2) != gift.Closed {
		t.Error("gift should be closed after the reset delay")
	}
}

func TestStore_CloseStopsUpdates(t *testing.T) {
	s := NewStore(inlineConfig(time.Hour))
	sess := s.CreateSession(1024)

	if err := s.OpenGift(sess.ID, 0, time.Now().UTC()); err != nil {
		t.Fatalf("OpenGift: %v", err)
	}
	if !s.Close(sess.ID) {
		t.Fatal("Close should report true for a live session")
	}
	if s.Close(sess.ID) {
		t.Error("second Close should report false")
	}
	if _, ok := s.GetSession(sess.ID); ok {
		t.Error("session should be gone")
	}
	if sess.viewport.Subscribers() != 0 {
		t.Error("strand should stop following the viewport")
	}
	if ids := sess.Inline.Advance(time.Now().Add(2 * time.Hour)); len(ids) != 0 {
		t.Error("closed controller must ignore late resets")
	}
	if err := s.OpenGift(sess.ID, 0, time.Now()); !errors.Is(err, ErrNoSession) {
		t.Errorf("err %v, want ErrNoSession", err)
	}
}

func TestStore_Sweep(t *testing.T) {
	s := NewStore(config.Default())
	old := s.CreateSession(800)
	fresh := s.CreateSession(800)
	defer s.Close(fresh.ID)

	old.Touch(time.Now().Add(-time.Hour))
	if n := s.Sweep(time.Now().Add(-time.Minute)); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if _, ok := s.GetSession(old.ID); ok {
		t.Error("idle session should be swept")
	}
	if s.Len() != 1 {
		t.Errorf("Len %d, want 1", s.Len())
	}
}

func TestStore_CloseRacingCreateStopsStrand(t *testing.T) {
	s := NewStore(config.Default())
	stop := make(chan struct{})
	swept := make(chan struct{})
	go func() {
		defer close(swept)
		for {
			select {
			case <-stop:
				return
			default:
				s.Sweep(time.Now().Add(time.Hour))
			}
		}
	}()

	sessions := make([]*Session, 0, 200)
	for i := 0; i < 200; i++ {
		sessions = append(sessions, s.CreateSession(1024))
	}
	close(stop)
	<-swept
	s.Sweep(time.Now().Add(time.Hour))

	for _, sess := range sessions {
		if n := sess.viewport.Subscribers(); n != 0 {
			t.Fatalf("session %s still follows the viewport (%d subscribers)", sess.ID, n)
		}
	}
}
