package gift

import (
	"fmt"
	"sync"
)

// Target is where inside the modal a press landed.
type Target string

const (
	TargetOverlay     Target = "overlay"
	TargetContent     Target = "content"
	TargetAcknowledge Target = "ack"
)

// ParseTarget maps a form value to a Target; anything unknown counts as content
// so a stray press never closes the reward.
func ParseTarget(s string) Target {
	switch Target(s) {
	case TargetOverlay, TargetAcknowledge:
		return Target(s)
	}
	return TargetContent
}

// Modal holds the single shared "currently selected gift".
type Modal struct {
	mu       sync.Mutex
	catalog  catalog
	selected *Item
}

// NewModal creates a controller with nothing selected.
func NewModal(items []Item) *Modal {
	return &Modal{catalog: newCatalog(items)}
}

// Select makes id the selected gift, replacing any previous selection.
func (m *Modal) Select(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.catalog.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownGift, id)
	}
	m.selected = &it
	return nil
}

// Dismiss clears the selection.
func (m *Modal) Dismiss() {
	m.mu.Lock()
	m.selected = nil
	m.mu.Unlock()
}

// Press handles a press on the open modal. Presses on the reward content are
// contained and never dismiss. It reports whether the modal was dismissed.
func (m *Modal) Press(target Target) bool {
	if target == TargetContent {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return false
	}
	m.selected = nil
	return true
}

// Selected returns the selected gift, if any.
func (m *Modal) Selected() (Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return Item{}, false
	}
	return *m.selected, true
}

// Items returns the gift set in configured order.
func (m *Modal) Items() []Item {
	return append([]Item(nil), m.catalog.items...)
}
