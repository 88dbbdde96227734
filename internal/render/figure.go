package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"hstin/tracksnap/internal/colormap"
	"hstin/tracksnap/internal/config"
	"hstin/tracksnap/parser"
)

type Options struct {
	DPI      float64
	Width    float64 // inches
	Height   float64 // inches
	States   *Boundaries
	Counties *Boundaries
	Logger   *slog.Logger
}

// Figure is the single rendering context of a run. The field layers are
// built once; SetExtent and SetFineprint change what the next Render shows.
type Figure struct {
	Field *parser.FieldGrid
	Spec  colormap.ColorSpec

	strategy  Strategy
	layers    []Layer
	states    *Boundaries
	colorbar  *Colorbar
	extent    Extent
	fineprint []string

	width, height int
	dpi           float64
	logger        *slog.Logger
}

// NewFigure refuses fields whose range misses the color levels with a
// *colormap.RangeError.
func NewFigure(field *parser.FieldGrid, spec colormap.ColorSpec, strategy Strategy, opts Options) (*Figure, error) {
	if opts.DPI <= 0 {
		opts.DPI = config.DefaultDPI
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = config.FigureWidth, config.FigureHeight
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	min, max, err := CheckRange(field, spec)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("field range", "variable", field.Name, "min", min, "max", max)

	layers, err := strategy.Layers(field, spec)
	if err != nil {
		return nil, err
	}
	if opts.States != nil {
		opts.Logger.Debug("state boundaries", "lines", opts.States.Len())
		layers = append(layers, opts.States)
	}
	if opts.Counties != nil {
		layers = append(layers, opts.Counties)
	}

	label := field.Label
	if field.Units != "" {
		label = fmt.Sprintf("%s (%s)", field.Label, field.Units)
	}

	return &Figure{
		Field:    field,
		Spec:     spec,
		strategy: strategy,
		layers:   layers,
		states:   opts.States,
		colorbar: NewColorbar(spec, label),
		extent:   GridExtent(field),
		width:    int(math.Round(opts.Width * opts.DPI)),
		height:   int(math.Round(opts.Height * opts.DPI)),
		dpi:      opts.DPI,
		logger:   opts.Logger,
	}, nil
}

// CheckRange returns the finite range of field, or a *colormap.RangeError
// when it does not reach the levels of spec or has no finite values.
func CheckRange(field *parser.FieldGrid, spec colormap.ColorSpec) (float64, float64, error) {
	min, max := field.Range()
	if math.IsNaN(min) {
		return min, max, &colormap.RangeError{Levels: spec.Levels, Min: min, Max: max}
	}
	if err := spec.CheckRange(min, max); err != nil {
		return min, max, err
	}
	return min, max, nil
}

func (f *Figure) Strategy() Strategy { return f.strategy }

// States is the state boundary layer, nil when the figure has none.
func (f *Figure) States() *Boundaries { return f.states }

// Size is the output image size in pixels.
func (f *Figure) Size() (int, int) { return f.width, f.height }

func (f *Figure) Extent() Extent { return f.extent }

func (f *Figure) SetExtent(e Extent) error {
	if !(e.Width() > 0) || !(e.Height() > 0) {
		return fmt.Errorf("empty extent %+v", e)
	}
	f.extent = e
	return nil
}

// SetFineprint replaces the small annotation in the lower left corner.
func (f *Figure) SetFineprint(lines ...string) {
	f.fineprint = append(f.fineprint[:0], lines...)
}

// layout places the map panel, keeping the extent's aspect ratio, and the
// colour bar underneath it.
func (f *Figure) layout() (panel, bar image.Rectangle) {
	W, H := float64(f.width), float64(f.height)
	top := 0.04 * H
	availW := 0.9 * W
	availH := H - top - float64(f.colorbar.Height(f.dpi)) - 0.1*H

	aspect := f.extent.Width() / f.extent.Height()
	pw, ph := availW, availW/aspect
	if ph > availH {
		pw, ph = availH*aspect, availH
	}
	x0 := (W - pw) / 2
	panel = image.Rect(int(x0), int(top), int(x0+pw), int(top+ph))

	bw := 0.55 * pw
	bh := math.Max(4, bw/20)
	bx := (W - bw) / 2
	by := float64(panel.Max.Y) + 0.04*H
	bar = image.Rect(int(bx), int(by), int(bx+bw), int(by+bh))
	return panel, bar
}

func (f *Figure) Render() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	panel, bar := f.layout()
	if panel.Dx() < 1 || panel.Dy() < 1 {
		return nil, fmt.Errorf("extent %+v leaves no room for the map", f.extent)
	}

	c := newCanvas(panel.Dx(), panel.Dy(), f.extent, f.dpi)
	for _, l := range f.layers {
		if err := l.Draw(c); err != nil {
			return nil, err
		}
	}
	draw.Draw(img, panel, c.Image, image.Point{}, draw.Src)

	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return nil, err
	}
	gc.SetStrokeColor(drawing.ColorBlack)
	gc.SetLineWidth(0.8 * f.dpi / 72)
	gc.BeginPath()
	gc.MoveTo(float64(panel.Min.X), float64(panel.Min.Y))
	gc.LineTo(float64(panel.Max.X), float64(panel.Min.Y))
	gc.LineTo(float64(panel.Max.X), float64(panel.Max.Y))
	gc.LineTo(float64(panel.Min.X), float64(panel.Max.Y))
	gc.Close()
	gc.Stroke()

	if err := f.colorbar.Draw(img, bar, f.dpi); err != nil {
		return nil, err
	}

	x := int(260 * f.dpi / 100)
	y := f.height - 4
	for i := len(f.fineprint) - 1; i >= 0; i-- {
		drawText(img, x, y, f.fineprint[i], color.Gray{Y: 0x40})
		y -= textFace.Height
	}
	return img, nil
}

// Save renders the figure and writes it to path in the given format. The
// image is written to a temporary file in the same directory and renamed
// into place, so path never holds a partial image.
func (f *Figure) Save(path, format string) error {
	img, err := f.Render()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Encode writes img as png or webp.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png", "":
		return png.Encode(w, img)
	case "webp":
		return webp.Encode(w, img, &webp.Options{Lossless: true})
	default:
		return errors.New("unsupported image format: " + format)
	}
}
