package render

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"hstin/tracksnap/internal/colormap"
	"hstin/tracksnap/parser"
)

// Layer draws one element of the map panel.
type Layer interface {
	Draw(c *Canvas) error
}

// Strategy decides which layers make up the map for a diagnostic.
type Strategy interface {
	Name() string
	Layers(field *parser.FieldGrid, spec colormap.ColorSpec) ([]Layer, error)
}

// FieldSource loads further variables from the container the primary field
// came from.
type FieldSource interface {
	Field(name string) (*parser.FieldGrid, error)
}

// StrategyFor picks FieldWithOverlay when spec names an overlay variable.
func StrategyFor(spec colormap.ColorSpec, src FieldSource, logger *slog.Logger) (Strategy, error) {
	if !spec.HasOverlay() {
		return SingleField{}, nil
	}
	overlay, err := src.Field(spec.Overlay)
	if err != nil {
		return nil, fmt.Errorf("failed to load overlay %s: %w", spec.Overlay, err)
	}
	return NewFieldWithOverlay(overlay, logger), nil
}

// SingleField fills the primary field only.
type SingleField struct{}

func (SingleField) Name() string { return "single" }

func (SingleField) Layers(field *parser.FieldGrid, spec colormap.ColorSpec) ([]Layer, error) {
	return []Layer{&fieldLayer{grid: field, spec: spec}}, nil
}

// FieldWithOverlay adds a translucent band and an outline contour of a
// second field on top of the primary fill.
type FieldWithOverlay struct {
	Overlay *parser.FieldGrid

	FillMin, FillMax float64
	FillColor        color.RGBA
	FillAlpha        float64

	OutlineLevel float64
	Outline      LineStyle

	logger *slog.Logger
}

// NewFieldWithOverlay uses the updraft helicity styling: shade (100, 1000]
// black at 30% and outline 100.
func NewFieldWithOverlay(overlay *parser.FieldGrid, logger *slog.Logger) *FieldWithOverlay {
	return &FieldWithOverlay{
		Overlay:      overlay,
		FillMin:      100,
		FillMax:      1000,
		FillColor:    color.RGBA{A: 0xff},
		FillAlpha:    0.3,
		OutlineLevel: 100,
		Outline:      LineStyle{Color: drawing.ColorBlack, Width: 0.5},
		logger:       logger,
	}
}

func (s *FieldWithOverlay) Name() string { return "overlay" }

func (s *FieldWithOverlay) Layers(field *parser.FieldGrid, spec colormap.ColorSpec) ([]Layer, error) {
	if s.Overlay.Nx != field.Nx || s.Overlay.Ny != field.Ny {
		return nil, fmt.Errorf("overlay %s is %dx%d, field %s is %dx%d",
			s.Overlay.Name, s.Overlay.Nx, s.Overlay.Ny, field.Name, field.Nx, field.Ny)
	}

	_, max := s.Overlay.Range()
	s.logger.Info("overlay", "variable", s.Overlay.Name, "max", max)

	contours, hidden := HideZeroLevel(Contour(s.Overlay, []float64{s.OutlineLevel}))
	if hidden {
		s.logger.Info("overlay has a zero contour, hiding it", "variable", s.Overlay.Name)
	}

	return []Layer{
		&fieldLayer{grid: field, spec: spec},
		&bandLayer{grid: s.Overlay, min: s.FillMin, max: s.FillMax, color: s.FillColor, alpha: s.FillAlpha},
		&contourLayer{grid: s.Overlay, set: contours, style: s.Outline},
	}, nil
}

// fieldLayer colors every pixel by the level bin of the sampled value.
type fieldLayer struct {
	grid *parser.FieldGrid
	spec colormap.ColorSpec
}

func (l *fieldLayer) Draw(c *Canvas) error {
	img := c.Image
	b := img.Bounds()
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			x, y := c.ToMap(px, py)
			col, ok := l.spec.ColorFor(l.grid.ValueAt(x, y))
			if !ok {
				continue
			}
			off := img.PixOffset(px, py)
			img.Pix[off+0] = col.R
			img.Pix[off+1] = col.G
			img.Pix[off+2] = col.B
			img.Pix[off+3] = 0xff
		}
	}
	return nil
}

// bandLayer shades pixels whose value lies in (min, max].
type bandLayer struct {
	grid     *parser.FieldGrid
	min, max float64
	color    color.RGBA
	alpha    float64
}

func (l *bandLayer) Draw(c *Canvas) error {
	b := c.Image.Bounds()
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			x, y := c.ToMap(px, py)
			v := l.grid.ValueAt(x, y)
			if v > l.min && v <= l.max {
				blend(c.Image, px, py, l.color, l.alpha)
			}
		}
	}
	return nil
}

type contourLayer struct {
	grid  *parser.FieldGrid
	set   ContourSet
	style LineStyle
}

func (l *contourLayer) Draw(c *Canvas) error {
	p := l.grid.Projection
	var lines [][][2]float64
	for _, line := range l.set.Lines {
		for _, seg := range line.Segments {
			x0, y0 := p.CellCenter(seg[0][0], seg[0][1])
			x1, y1 := p.CellCenter(seg[1][0], seg[1][1])
			lines = append(lines, [][2]float64{{x0, y0}, {x1, y1}})
		}
	}
	return c.StrokeLines(lines, l.style.Color, l.style.Width)
}
