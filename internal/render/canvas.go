package render

import (
	"image"
	"image/color"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas is the map panel: a raster whose pixels cover Extent exactly.
type Canvas struct {
	Image  *image.RGBA
	Extent Extent
	DPI    float64
}

func newCanvas(w, h int, e Extent, dpi float64) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return &Canvas{Image: img, Extent: e, DPI: dpi}
}

// ToPixel maps projected metres to panel pixels (y down).
func (c *Canvas) ToPixel(x, y float64) (float64, float64) {
	w, h := float64(c.Image.Rect.Dx()), float64(c.Image.Rect.Dy())
	return (x - c.Extent.XMin) / c.Extent.Width() * w, (c.Extent.YMax - y) / c.Extent.Height() * h
}

// ToMap returns the projected coordinate of the centre of pixel (px, py).
func (c *Canvas) ToMap(px, py int) (float64, float64) {
	w, h := float64(c.Image.Rect.Dx()), float64(c.Image.Rect.Dy())
	x := c.Extent.XMin + (float64(px)+0.5)/w*c.Extent.Width()
	y := c.Extent.YMax - (float64(py)+0.5)/h*c.Extent.Height()
	return x, y
}

// Points converts a line width in points to pixels.
func (c *Canvas) Points(pt float64) float64 {
	return pt * c.DPI / 72
}

// StrokeLines draws polylines given in projected metres as one path.
func (c *Canvas) StrokeLines(lines [][][2]float64, col drawing.Color, widthPt float64) error {
	if len(lines) == 0 {
		return nil
	}
	gc, err := drawing.NewRasterGraphicContext(c.Image)
	if err != nil {
		return err
	}
	gc.SetStrokeColor(col)
	gc.SetLineWidth(c.Points(widthPt))
	gc.BeginPath()
	for _, line := range lines {
		if len(line) < 2 {
			continue
		}
		x, y := c.ToPixel(line[0][0], line[0][1])
		gc.MoveTo(x, y)
		for _, p := range line[1:] {
			x, y = c.ToPixel(p[0], p[1])
			gc.LineTo(x, y)
		}
	}
	gc.Stroke()
	return nil
}

// blend composites col with the given opacity over pixel (px, py).
func blend(img *image.RGBA, px, py int, col color.RGBA, alpha float64) {
	off := img.PixOffset(px, py)
	p := img.Pix[off : off+4 : off+4]
	p[0] = uint8(float64(p[0])*(1-alpha) + float64(col.R)*alpha)
	p[1] = uint8(float64(p[1])*(1-alpha) + float64(col.G)*alpha)
	p[2] = uint8(float64(p[2])*(1-alpha) + float64(col.B)*alpha)
	p[3] = 0xff
}

var textFace = basicfont.Face7x13

func textWidth(s string) int {
	return font.MeasureString(textFace, s).Ceil()
}

// drawText draws s with its baseline starting at (x, y).
func drawText(img *image.RGBA, x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: textFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
