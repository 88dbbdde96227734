package render

import (
	"fmt"
	"log/slog"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"hstin/tracksnap/parser"
)

// Line styles for political boundaries.
var (
	StateStyle  = LineStyle{Color: drawing.ColorBlack.WithAlpha(191), Width: 0.45}
	CountyStyle = LineStyle{Color: drawing.ColorBlack.WithAlpha(64), Width: 0.2}
)

type LineStyle struct {
	Color drawing.Color
	Width float64 // points
}

// shapefiles without a .prj are assumed to be geographic.
const defaultShapeProj4 = "+proj=longlat +datum=WGS84 +no_defs"

// Boundaries is a set of projected polylines indexed for extent queries.
type Boundaries struct {
	Style LineStyle
	tree  *rtree.Rtree
	n     int
}

func NewBoundaries(lines []geom.LineString, style LineStyle) *Boundaries {
	b := &Boundaries{Style: style, tree: rtree.NewTree(25, 50)}
	for _, l := range lines {
		b.add(l)
	}
	return b
}

func (b *Boundaries) add(l geom.LineString) {
	if len(l) < 2 {
		return
	}
	b.tree.Insert(l)
	b.n++
}

// Len is the number of indexed polylines.
func (b *Boundaries) Len() int {
	return b.n
}

// LoadBoundaries reads the outlines of every shape in a shapefile and
// projects them into target.
func LoadBoundaries(path string, target *parser.Projection, style LineStyle, logger *slog.Logger) (*Boundaries, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer d.Close()

	sr, err := d.SR()
	if err != nil {
		logger.Debug("shapefile has no projection, assuming lon/lat", "path", path)
		if sr, err = proj.Parse(defaultShapeProj4); err != nil {
			return nil, err
		}
	}
	trans, err := target.TransformFrom(sr)
	if err != nil {
		return nil, fmt.Errorf("shapefile %s: %w", path, err)
	}

	b := NewBoundaries(nil, style)
	skipped := 0
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		if g == nil {
			continue
		}
		gg, err := g.Transform(trans)
		if err != nil {
			skipped++
			continue
		}
		switch t := gg.(type) {
		case geom.Polygon:
			for _, ring := range t {
				b.add(closed(ring))
			}
		case geom.MultiPolygon:
			for _, poly := range t {
				for _, ring := range poly {
					b.add(closed(ring))
				}
			}
		case geom.LineString:
			b.add(t)
		case geom.MultiLineString:
			for _, l := range t {
				b.add(l)
			}
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("shapefile %s: %w", path, err)
	}
	if skipped > 0 {
		logger.Debug("skipped shapes that could not be projected", "path", path, "count", skipped)
	}
	logger.Debug("loaded boundaries", "path", path, "lines", b.n)
	return b, nil
}

func closed(ring geom.Path) geom.LineString {
	l := geom.LineString(ring)
	if len(l) > 1 && l[0] != l[len(l)-1] {
		l = append(l[:len(l):len(l)], l[0])
	}
	return l
}

// Within returns the polylines whose bounds intersect e.
func (b *Boundaries) Within(e Extent) []geom.LineString {
	var out []geom.LineString
	for _, s := range b.tree.SearchIntersect(e.Bounds()) {
		if l, ok := s.(geom.LineString); ok {
			out = append(out, l)
		}
	}
	return out
}

func (b *Boundaries) Draw(c *Canvas) error {
	var lines [][][2]float64
	for _, l := range b.Within(c.Extent) {
		line := make([][2]float64, len(l))
		for i, p := range l {
			line[i] = [2]float64{p.X, p.Y}
		}
		lines = append(lines, line)
	}
	return c.StrokeLines(lines, b.Style.Color, b.Style.Width)
}
