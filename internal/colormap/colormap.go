package colormap

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ColorSpec is the discrete color ramp for one diagnostic. Colors[i] fills
// values in (Levels[i], Levels[i+1]]; the lowest bin also takes Levels[0].
type ColorSpec struct {
	Name     string    `yaml:"-"`
	Variable string    `yaml:"variable" validate:"required"`
	Overlay  string    `yaml:"overlay"`
	Levels   []float64 `yaml:"levels" validate:"min=2"`
	Colors   []string  `yaml:"colors" validate:"min=1,dive,hexcolor"`

	palette []color.RGBA
}

// RangeError is returned when a field's values never reach the color levels.
type RangeError struct {
	Levels   []float64
	Min, Max float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("levels %v out of range of field [%g, %g]", e.Levels, e.Min, e.Max)
}

func (s *ColorSpec) prepare() error {
	if len(s.Levels) < 2 {
		return fmt.Errorf("field %s: need at least 2 levels, got %d", s.Name, len(s.Levels))
	}
	if !sort.SliceIsSorted(s.Levels, func(i, j int) bool { return s.Levels[i] < s.Levels[j] }) {
		return fmt.Errorf("field %s: levels must be ascending", s.Name)
	}
	for i := 1; i < len(s.Levels); i++ {
		if s.Levels[i] == s.Levels[i-1] {
			return fmt.Errorf("field %s: duplicate level %g", s.Name, s.Levels[i])
		}
	}
	if len(s.Colors) != len(s.Levels)-1 {
		return fmt.Errorf("field %s: %d colors for %d levels, want %d",
			s.Name, len(s.Colors), len(s.Levels), len(s.Levels)-1)
	}

	s.palette = make([]color.RGBA, len(s.Colors))
	for i, hex := range s.Colors {
		c := drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
		s.palette[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	return nil
}

// HasOverlay reports whether the diagnostic is a composite with a second field.
func (s ColorSpec) HasOverlay() bool {
	return s.Overlay != ""
}

// Bin returns the color bin holding v. A value equal to a level falls in the
// bin below it, except Levels[0] which opens the lowest bin. Values outside
// [Levels[0], Levels[n-1]] are not colored.
func (s ColorSpec) Bin(v float64) (int, bool) {
	n := len(s.Levels)
	if n < 2 || math.IsNaN(v) || v < s.Levels[0] || v > s.Levels[n-1] {
		return 0, false
	}
	i := sort.SearchFloat64s(s.Levels, v)
	if i == 0 {
		return 0, true
	}
	return i - 1, true
}

func (s ColorSpec) Color(bin int) color.RGBA {
	return s.palette[bin]
}

// ColorFor combines Bin and Color.
func (s ColorSpec) ColorFor(v float64) (color.RGBA, bool) {
	bin, ok := s.Bin(v)
	if !ok {
		return color.RGBA{}, false
	}
	return s.palette[bin], true
}

// CheckRange refuses a field whose [min, max] does not intersect the levels.
func (s ColorSpec) CheckRange(min, max float64) error {
	if min > s.Levels[len(s.Levels)-1] || max < s.Levels[0] {
		return &RangeError{Levels: append([]float64(nil), s.Levels...), Min: min, Max: max}
	}
	return nil
}

// New builds a validated ColorSpec outside of a field table.
func New(name, variable, overlay string, levels []float64, colors []string) (ColorSpec, error) {
	s := ColorSpec{
		Name:     name,
		Variable: variable,
		Overlay:  overlay,
		Levels:   levels,
		Colors:   colors,
	}
	if err := s.prepare(); err != nil {
		return ColorSpec{}, err
	}
	return s, nil
}
