package greeting

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
	"sync"
	"time"

	"wintergreet/internal/config"
	"wintergreet/internal/gift"
	"wintergreet/internal/scene"
	"wintergreet/pkg/realtime"
)

// Session is one visitor's scene: generated fields, the light strand that
// follows the visitor's viewport, and the gift controller for the
// configured variant. Exactly one of Inline and Modal is set.
type Session struct {
	ID        string
	CreatedAt time.Time
	Variant   gift.Variant

	Snow   *scene.Field
	Stars  *scene.Field
	Lights *scene.Strand
	Inline *gift.Inline
	Modal  *gift.Modal

	viewport   *realtime.Broadcaster[int]
	stopLights func()

	mu       sync.Mutex
	lastSeen time.Time
}

func newSession(cfg *config.Config, width int, src scene.Source, now time.Time) *Session {
	s := &Session{
		ID:        newID(),
		CreatedAt: now,
		Variant:   cfg.GiftVariant(),
		Snow:      scene.NewField(cfg.Snow, src),
		Stars:     scene.NewField(cfg.Stars, src),
		Lights:    scene.NewStrand(cfg.Strand(), width, src),
		viewport:  realtime.NewBroadcaster[int](),
		lastSeen:  now,
	}
	switch s.Variant {
	case gift.VariantInline:
		s.Inline = gift.NewInline(cfg.Gifts.Items, cfg.Gifts.ResetAfter)
	default:
		s.Modal = gift.NewModal(cfg.Gifts.Items)
	}
	return s
}

// Touch records activity so idle sweeps leave the session alone.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns the time of the latest recorded activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Snapshot captures everything a renderer needs in one consistent read.
type Snapshot struct {
	ID       string
	Variant  gift.Variant
	Snow     []scene.Particle
	Stars    []scene.Particle
	Lights   []scene.Light
	Gifts    []gift.ItemState
	Selected *gift.Item
}

// Snapshot returns the session's current render state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:      s.ID,
		Variant: s.Variant,
		Snow:    s.Snow.Particles(),
		Stars:   s.Stars.Particles(),
		Lights:  s.Lights.Lights(),
		Gifts:   s.Gifts(),
	}
	if s.Modal != nil {
		if it, ok := s.Modal.Selected(); ok {
			snap.Selected = &it
		}
	}
	return snap
}

// Gifts returns every gift with its inline state. In the modal variant all
// gifts report Closed; the selection lives in the modal.
func (s *Session) Gifts() []gift.ItemState {
	if s.Inline != nil {
		return s.Inline.Snapshot()
	}
	items := s.Modal.Items()
	out := make([]gift.ItemState, 0, len(items))
	for _, it := range items {
		out = append(out, gift.ItemState{Item: it, State: gift.Closed})
	}
	return out
}

func (s *Session) close() {
	if s.stopLights != nil {
		s.stopLights()
	}
	if s.Inline != nil {
		s.Inline.Close()
	}
	if s.Modal != nil {
		s.Modal.Dismiss()
	}
}

func newID() string {
	// 10 bytes -> 16 chars of base32, short and url-safe.
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
