package render

import (
	"github.com/ctessum/geom"

	"hstin/tracksnap/internal/config"
	"hstin/tracksnap/internal/tracks"
	"hstin/tracksnap/parser"
)

// Extent is a crop window in native projected metres.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}

func (e Extent) Width() float64  { return e.XMax - e.XMin }
func (e Extent) Height() float64 { return e.YMax - e.YMin }

func (e Extent) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: e.XMin, Y: e.YMin},
		Max: geom.Point{X: e.XMax, Y: e.YMax},
	}
}

// Cropper derives a window around each track point from the run's padding.
type Cropper struct {
	Projection *parser.Projection
	Padding    config.Padding
}

func NewCropper(p *parser.Projection, padding config.Padding) Cropper {
	return Cropper{Projection: p, Padding: padding}
}

// Window projects the point and pads it by West/East/South/North km. The
// window is not clamped to the grid; areas without data render blank.
func (c Cropper) Window(pt tracks.TrackPoint) (Extent, error) {
	x, y, err := c.Projection.Forward(pt.Lon(), pt.Lat())
	if err != nil {
		return Extent{}, err
	}
	return Extent{
		XMin: x - c.Padding.West*1000,
		XMax: x + c.Padding.East*1000,
		YMin: y - c.Padding.South*1000,
		YMax: y + c.Padding.North*1000,
	}, nil
}

// GridExtent covers the whole grid, cell centre to cell centre.
func GridExtent(g *parser.FieldGrid) Extent {
	p := g.Projection
	x0, y0 := p.CellCenter(0, 0)
	x1, y1 := p.CellCenter(float64(g.Nx-1), float64(g.Ny-1))
	return Extent{XMin: x0, XMax: x1, YMin: y0, YMax: y1}
}
