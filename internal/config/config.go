package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"wintergreet/internal/gift"
	"wintergreet/internal/scene"
)

// EnvConfigPath names the environment variable holding an optional YAML scene file.
const EnvConfigPath = "WINTERGREET_CONFIG"

// Config is the whole scene: greeting card, particle fields, light string,
// gift set and the opaque assets the page references.
type Config struct {
	Variant  string          `yaml:"variant"`
	Greeting Greeting        `yaml:"greeting"`
	Snow     scene.FieldSpec `yaml:"snow"`
	Stars    scene.FieldSpec `yaml:"stars"`
	Lights   Lights          `yaml:"lights"`
	Gifts    Gifts           `yaml:"gifts"`
	Assets   Assets          `yaml:"assets"`
}

// Greeting is the card text.
type Greeting struct {
	Icon     string `yaml:"icon"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Message  string `yaml:"message"`
}

// Lights configures the curved light string.
type Lights struct {
	Breakpoint int         `yaml:"breakpoint"`
	Narrow     int         `yaml:"narrow"`
	Wide       int         `yaml:"wide"`
	Shape      string      `yaml:"shape"`
	Depth      float64     `yaml:"depth"`
	Palette    []string    `yaml:"palette"`
	Delay      scene.Range `yaml:"delay"`
}

// Gifts is the fixed gift set and the inline reset delay.
type Gifts struct {
	ResetAfter time.Duration `yaml:"resetAfter"`
	Items      []gift.Item   `yaml:"items"`
}

// Assets are references passed through to the renderer untouched.
type Assets struct {
	Music       string   `yaml:"music"`
	Backgrounds []string `yaml:"backgrounds"`
	// ChimeHz is the tone the terminal viewer plays when a gift opens.
	ChimeHz float64 `yaml:"chimeHz"`
}

// Default returns the built-in scene.
func Default() *Config {
	strand := scene.DefaultStrandSpec()
	return &Config{
		Variant: string(gift.VariantModal),
		Greeting: Greeting{
			Icon:     "🎄",
			Title:    "Merry Christmas",
			Subtitle: "To All",
			Message:  "May your days be merry and bright,\nand may all your Christmases be white.",
		},
		Snow:  scene.SnowSpec(),
		Stars: scene.StarSpec(),
		Lights: Lights{
			Breakpoint: strand.Tiers.Breakpoint,
			Narrow:     strand.Tiers.Narrow,
			Wide:       strand.Tiers.Wide,
			Shape:      string(strand.Curve.Shape),
			Depth:      strand.Curve.Depth,
			Palette:    append([]string(nil), strand.Palette...),
			Delay:      strand.Delay,
		},
		Gifts: Gifts{
			ResetAfter: gift.DefaultResetAfter,
			Items:      gift.DefaultItems(),
		},
		Assets: Assets{
			Backgrounds: []string{"/static/tree.svg", "/static/snowman.svg"},
			ChimeHz:     880,
		},
	}
}

// Load reads a YAML scene file over the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults, fills empty values and validates.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}
	return cfg, nil
}

// FromEnv loads the file named by WINTERGREET_CONFIG, or the defaults when unset.
func FromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func applyDefaults(cfg *Config) {
	if len(cfg.Lights.Palette) == 0 {
		cfg.Lights.Palette = append([]string(nil), scene.DefaultPalette...)
	}
	if cfg.Gifts.ResetAfter <= 0 {
		cfg.Gifts.ResetAfter = gift.DefaultResetAfter
	}
	if cfg.Assets.ChimeHz <= 0 {
		cfg.Assets.ChimeHz = 880
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if _, err := gift.ParseVariant(c.Variant); err != nil {
		errs = append(errs, err)
	}
	if err := c.Snow.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("snow: %w", err))
	}
	if err := c.Stars.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("stars: %w", err))
	}
	if _, err := scene.ParseShape(c.Lights.Shape); err != nil {
		errs = append(errs, fmt.Errorf("lights: %w", err))
	}
	if err := c.Lights.tiers().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("lights: %w", err))
	}
	if err := c.Lights.Delay.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("lights: delay: %w", err))
	}
	if c.Lights.Depth < 0 {
		errs = append(errs, fmt.Errorf("lights: depth %g is negative", c.Lights.Depth))
	}
	if err := gift.ValidateItems(c.Gifts.Items); err != nil {
		errs = append(errs, fmt.Errorf("gifts: %w", err))
	}
	return errors.Join(errs...)
}

// GiftVariant returns the parsed interaction variant.
func (c *Config) GiftVariant() gift.Variant {
	v, err := gift.ParseVariant(c.Variant)
	if err != nil {
		return gift.VariantModal
	}
	return v
}

// Strand converts the light settings into a strand spec.
func (c *Config) Strand() scene.StrandSpec {
	shape, err := scene.ParseShape(c.Lights.Shape)
	if err != nil {
		shape = scene.ShapeSag
	}
	return scene.StrandSpec{
		Tiers:   c.Lights.tiers(),
		Curve:   scene.Curve{Shape: shape, Depth: c.Lights.Depth},
		Palette: c.Lights.Palette,
		Delay:   c.Lights.Delay,
	}
}

func (l Lights) tiers() scene.Tiers {
	return scene.Tiers{Breakpoint: l.Breakpoint, Narrow: l.Narrow, Wide: l.Wide}
}
