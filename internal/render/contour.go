package render

import (
	"math"

	"hstin/tracksnap/parser"
)

// Segment is a contour piece between two points in fractional grid index space.
type Segment [2][2]float64

type ContourLine struct {
	Level    float64
	Segments []Segment
}

// ContourSet is the result of tracing a field at a list of levels.
type ContourSet struct {
	Levels []float64
	Lines  []ContourLine
}

// Contour traces g with marching squares. Requested levels outside the data
// range are dropped; when none remain and the data spans zero, level 0 is
// traced instead.
func Contour(g *parser.FieldGrid, requested []float64) ContourSet {
	zmin, zmax := g.Range()
	levels := resolveLevels(requested, zmin, zmax)

	cs := ContourSet{Levels: levels}
	for _, level := range levels {
		cs.Lines = append(cs.Lines, ContourLine{Level: level, Segments: trace(g, level)})
	}
	return cs
}

func resolveLevels(requested []float64, zmin, zmax float64) []float64 {
	if math.IsNaN(zmin) || math.IsNaN(zmax) {
		return nil
	}
	var levels []float64
	for _, l := range requested {
		if l >= zmin && l <= zmax {
			levels = append(levels, l)
		}
	}
	if len(levels) == 0 && zmin <= 0 && zmax >= 0 {
		levels = []float64{0}
	}
	return levels
}

// HideZeroLevel drops a level-0 contour. It reports whether one was removed.
func HideZeroLevel(cs ContourSet) (ContourSet, bool) {
	out := ContourSet{}
	hidden := false
	for _, l := range cs.Levels {
		if l == 0 {
			hidden = true
			continue
		}
		out.Levels = append(out.Levels, l)
	}
	for _, line := range cs.Lines {
		if line.Level == 0 {
			continue
		}
		out.Lines = append(out.Lines, line)
	}
	return out, hidden
}

func trace(g *parser.FieldGrid, level float64) []Segment {
	var segs []Segment
	for j := 0; j < g.Ny-1; j++ {
		for i := 0; i < g.Nx-1; i++ {
			segs = appendCell(segs, g, i, j, level)
		}
	}
	return segs
}

// appendCell handles the square with lower-left corner (i, j). Corners go
// counter-clockwise from the lower left; edges are bottom, right, top, left.
func appendCell(segs []Segment, g *parser.FieldGrid, i, j int, level float64) []Segment {
	v := [4]float64{g.At(i, j), g.At(i+1, j), g.At(i+1, j+1), g.At(i, j+1)}
	c := [4][2]float64{
		{float64(i), float64(j)},
		{float64(i + 1), float64(j)},
		{float64(i + 1), float64(j + 1)},
		{float64(i), float64(j + 1)},
	}
	for _, x := range v {
		if math.IsNaN(x) {
			return segs
		}
	}

	var edges [4]*[2]float64
	n := 0
	for e := 0; e < 4; e++ {
		a, b := e, (e+1)%4
		if (v[a] >= level) == (v[b] >= level) {
			continue
		}
		t := (level - v[a]) / (v[b] - v[a])
		p := [2]float64{c[a][0] + t*(c[b][0]-c[a][0]), c[a][1] + t*(c[b][1]-c[a][1])}
		edges[e] = &p
		n++
	}

	switch n {
	case 2:
		var pts [][2]float64
		for _, p := range edges {
			if p != nil {
				pts = append(pts, *p)
			}
		}
		segs = append(segs, Segment{pts[0], pts[1]})
	case 4:
		// Saddle: resolve with the cell-centre average.
		centre := (v[0] + v[1] + v[2] + v[3]) / 4
		if (centre >= level) == (v[0] >= level) {
			segs = append(segs, Segment{*edges[0], *edges[1]}, Segment{*edges[2], *edges[3]})
		} else {
			segs = append(segs, Segment{*edges[0], *edges[3]}, Segment{*edges[1], *edges[2]})
		}
	}
	return segs
}
