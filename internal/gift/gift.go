package gift

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownGift is returned when a click names an id outside the fixed set.
var ErrUnknownGift = errors.New("unknown gift")

// Reward is what a gift reveals. A plain-text payload only sets Message.
type Reward struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
	Icon    string `yaml:"icon"`
}

// Item is one gift in the fixed set built at startup.
type Item struct {
	ID     int    `yaml:"id"`
	Icon   string `yaml:"icon"`
	Reward Reward `yaml:"reward"`
}

// DefaultItems is the stock set of four gifts.
func DefaultItems() []Item {
	return []Item{
		{ID: 0, Icon: "🎁", Reward: Reward{Title: "Warm Wishes", Message: "May your home be filled with warmth and laughter.", Icon: "🔥"}},
		{ID: 1, Icon: "🎀", Reward: Reward{Title: "Sweet Treat", Message: "A cup of cocoa with extra marshmallows is on its way.", Icon: "☕"}},
		{ID: 2, Icon: "🧸", Reward: Reward{Title: "Snow Day", Message: "One free snow day, no alarms allowed.", Icon: "⛄"}},
		{ID: 3, Icon: "⭐", Reward: Reward{Title: "Bright Year", Message: "Here's to a bright and merry new year!", Icon: "🎆"}},
	}
}

// Gift sets hold between MinItems and MaxItems entries.
const (
	MinItems = 3
	MaxItems = 4
)

// ValidateItems checks ids are unique and the set size is within bounds.
func ValidateItems(items []Item) error {
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("duplicate gift id %d", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	if len(items) < MinItems || len(items) > MaxItems {
		return fmt.Errorf("need %d to %d gifts, got %d", MinItems, MaxItems, len(items))
	}
	return nil
}

// Variant picks the interaction shape for a deployment.
type Variant string

const (
	// VariantInline reveals in place and closes again after a fixed delay.
	VariantInline Variant = "inline"
	// VariantModal keeps one shared selection shown in an overlay until dismissed.
	VariantModal Variant = "modal"
)

// ParseVariant maps a config value to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantModal, "":
		return VariantModal, nil
	case VariantInline:
		return VariantInline, nil
	}
	return "", fmt.Errorf("unknown gift variant %q", s)
}

type catalog struct {
	items []Item
	index map[int]int
}

func newCatalog(items []Item) catalog {
	c := catalog{
		items: append([]Item(nil), items...),
		index: make(map[int]int, len(items)),
	}
	for i, it := range c.items {
		c.index[it.ID] = i
	}
	return c
}

func (c catalog) lookup(id int) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}
