package scene

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Particle describes one snowflake or star. Positions are percentages of
// the viewport; Duration and Delay are seconds consumed by the renderer's
// animation, the generator never drives timing itself.
type Particle struct {
	ID       int
	X        float64
	Y        float64
	Duration float64
	Delay    float64
	Size     float64
	Opacity  float64
}

// FieldSpec is the count and attribute ranges for one particle class.
type FieldSpec struct {
	Count    int   `yaml:"count"`
	X        Range `yaml:"x"`
	Y        Range `yaml:"y"`
	Duration Range `yaml:"duration"`
	Delay    Range `yaml:"delay"`
	Size     Range `yaml:"size"`
	Opacity  Range `yaml:"opacity"`
}

// SnowSpec returns the default falling-snow field.
func SnowSpec() FieldSpec {
	return FieldSpec{
		Count:    80,
		X:        Range{Min: 0, Max: 100},
		Y:        Range{Min: 0, Max: 0},
		Duration: Range{Min: 3, Max: 8},
		Delay:    Range{Min: 0, Max: 5},
		Size:     Range{Min: 0.5, Max: 2.0},
		Opacity:  Range{Min: 0.3, Max: 0.8},
	}
}

// StarSpec returns the default twinkling star field.
func StarSpec() FieldSpec {
	return FieldSpec{
		Count:    60,
		X:        Range{Min: 0, Max: 100},
		Y:        Range{Min: 0, Max: 100},
		Duration: Range{Min: 2, Max: 5},
		Delay:    Range{Min: 0, Max: 3},
		Size:     Range{Min: 1, Max: 3},
		Opacity:  Range{Min: 0.4, Max: 1.0},
	}
}

var percent = Range{Min: 0, Max: 100}

// Validate checks the count and that every range is ordered and positions stay within [0, 100].
func (s FieldSpec) Validate() error {
	if s.Count < 0 {
		return fmt.Errorf("count %d is negative", s.Count)
	}
	var errs []error
	for _, attr := range []struct {
		name string
		r    Range
	}{
		{"x", s.X}, {"y", s.Y}, {"duration", s.Duration},
		{"delay", s.Delay}, {"size", s.Size}, {"opacity", s.Opacity},
	} {
		if err := attr.r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", attr.name, err))
		}
	}
	if !percent.Contains(s.X.Min) || !percent.Contains(s.X.Max) {
		errs = append(errs, fmt.Errorf("x: %s outside %s", s.X, percent))
	}
	if !percent.Contains(s.Y.Min) || !percent.Contains(s.Y.Max) {
		errs = append(errs, fmt.Errorf("y: %s outside %s", s.Y, percent))
	}
	return errors.Join(errs...)
}

// Generate samples spec.Count particles, ids 0..Count-1 in generation order.
func Generate(spec FieldSpec, src Source) []Particle {
	if spec.Count <= 0 {
		return []Particle{}
	}
	if src == nil {
		src = DefaultSource
	}
	out := make([]Particle, spec.Count)
	for i := range out {
		out[i] = Particle{
			ID:       i,
			X:        spec.X.Sample(src),
			Y:        spec.Y.Sample(src),
			Duration: spec.Duration.Sample(src),
			Delay:    spec.Delay.Sample(src),
			Size:     spec.Size.Sample(src),
			Opacity:  spec.Opacity.Sample(src),
		}
	}
	return out
}

// Field is the displayed particle collection for one class. Readers always
// see a complete batch: Regenerate builds the new slice first and swaps it in
// with a single atomic store.
type Field struct {
	spec      FieldSpec
	particles atomic.Pointer[[]Particle]
}

// NewField creates a field and generates its first batch.
func NewField(spec FieldSpec, src Source) *Field {
	f := &Field{spec: spec}
	f.Regenerate(src)
	return f
}

// Spec returns the spec the field samples from.
func (f *Field) Spec() FieldSpec {
	return f.spec
}

// Regenerate replaces the whole collection with a fresh independent batch.
func (f *Field) Regenerate(src Source) []Particle {
	batch := Generate(f.spec, src)
	f.particles.Store(&batch)
	return batch
}

// Particles returns the current batch. Callers must not modify it.
func (f *Field) Particles() []Particle {
	p := f.particles.Load()
	if p == nil {
		return nil
	}
	return *p
}
