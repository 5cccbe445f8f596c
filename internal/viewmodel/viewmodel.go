package viewmodel

// Greeting holds the card text.
type Greeting struct {
	Icon     string
	Title    string
	Subtitle string
	Lines    []string
}

// Flake is one falling snowflake.
type Flake struct {
	ID       int
	Left     float64
	Duration float64
	Delay    float64
	Opacity  float64
	Size     float64
}

// Star is one twinkling star.
type Star struct {
	ID       int
	Left     float64
	Top      float64
	Duration float64
	Delay    float64
	Opacity  float64
	Size     float64
}

// Bulb is one light on the string.
type Bulb struct {
	ID     int
	Left   float64
	Offset float64
	Color  string
	Delay  float64
}

// LightsFragment holds data for the light string.
type LightsFragment struct {
	Bulbs []Bulb
}

// Reward holds the revealed payload of a gift.
type Reward struct {
	Title   string
	Message string
	Icon    string
}

// Gift holds one gift button.
type Gift struct {
	ID     int
	Icon   string
	Opened bool
	Reward Reward
}

// GiftsFragment holds data for the gift row and, in the modal variant, the overlay.
type GiftsFragment struct {
	Inline   bool
	Gifts    []Gift
	Selected *Reward
}

// ScenePage holds data for the full scene page.
type ScenePage struct {
	Title       string
	Greeting    Greeting
	Snow        []Flake
	Stars       []Star
	Lights      LightsFragment
	Gifts       GiftsFragment
	Music       string
	Backgrounds []string
}
