package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"hstin/tracksnap/internal/colormap"
)

// Colorbar is a horizontal key for a ColorSpec with one box per bin.
type Colorbar struct {
	Spec  colormap.ColorSpec
	Label string
	Ticks []float64
}

const tickFormat = "%.0f"

func NewColorbar(spec colormap.ColorSpec, label string) *Colorbar {
	return &Colorbar{Spec: spec, Label: label, Ticks: Ticks(spec.Levels)}
}

// Ticks labels every level of short ramps and picks round numbers otherwise.
func Ticks(levels []float64) []float64 {
	if len(levels) < 9 {
		return append([]float64(nil), levels...)
	}
	return niceTicks(levels[0], levels[len(levels)-1], 8)
}

// niceTicks returns at most maxTicks multiples of a 1, 2 or 5 step in [lo, hi].
func niceTicks(lo, hi float64, maxTicks int) []float64 {
	if hi <= lo || maxTicks < 2 {
		return []float64{lo}
	}
	raw := (hi - lo) / float64(maxTicks-1)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := 10 * mag
	for _, m := range []float64{1, 2, 5} {
		if m*mag >= raw {
			step = m * mag
			break
		}
	}

	var ticks []float64
	eps := step * 1e-9
	for t := math.Ceil(lo/step) * step; t <= hi+eps; t += step {
		ticks = append(ticks, math.Round(t/step)*step)
	}
	return ticks
}

// position maps v to [0, 1] along the bar, bins equally wide.
func (cb *Colorbar) position(v float64) (float64, bool) {
	levels := cb.Spec.Levels
	n := len(levels) - 1
	if n < 1 || v < levels[0] || v > levels[n] {
		return 0, false
	}
	for i := 0; i < n; i++ {
		if v <= levels[i+1] {
			return (float64(i) + (v-levels[i])/(levels[i+1]-levels[i])) / float64(n), true
		}
	}
	return 1, true
}

// Draw paints the bar into r with tick labels and the field label beneath.
func (cb *Colorbar) Draw(img *image.RGBA, r image.Rectangle, dpi float64) error {
	n := len(cb.Spec.Levels) - 1
	for k := 0; k < n; k++ {
		x0 := r.Min.X + k*r.Dx()/n
		x1 := r.Min.X + (k+1)*r.Dx()/n
		box := image.Rect(x0, r.Min.Y, x1, r.Max.Y)
		draw.Draw(img, box, image.NewUniform(cb.Spec.Color(k)), image.Point{}, draw.Src)
	}

	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return err
	}
	gc.SetStrokeColor(drawing.ColorBlack)
	gc.SetLineWidth(0.5 * dpi / 72)
	gc.BeginPath()
	x0, y0, x1, y1 := float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y)
	gc.MoveTo(x0, y0)
	gc.LineTo(x1, y0)
	gc.LineTo(x1, y1)
	gc.LineTo(x0, y1)
	gc.Close()

	tickLen := int(math.Max(2, 3.5*dpi/72))
	labelY := r.Max.Y + tickLen + textFace.Ascent + 2
	for _, t := range cb.Ticks {
		pos, ok := cb.position(t)
		if !ok {
			continue
		}
		x := float64(r.Min.X) + pos*float64(r.Dx())
		gc.MoveTo(x, y1)
		gc.LineTo(x, y1+float64(tickLen))

		s := fmt.Sprintf(tickFormat, t)
		drawText(img, int(x)-textWidth(s)/2, labelY, s, color.Black)
	}
	gc.Stroke()

	if cb.Label != "" {
		y := labelY + textFace.Height + 2
		drawText(img, r.Min.X+(r.Dx()-textWidth(cb.Label))/2, y, cb.Label, color.Black)
	}
	return nil
}

// Height is the space below the bar used by ticks and labels.
func (cb *Colorbar) Height(dpi float64) int {
	return int(math.Max(2, 3.5*dpi/72)) + 2*textFace.Height + 6
}
