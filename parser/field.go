package parser

import (
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// FieldGrid is one 2-D model field on its native grid. Values, Lat and Lon are
// shaped [Ny, Nx], rows south to north, columns west to east.
type FieldGrid struct {
	Name   string
	Label  string
	Units  string
	Nx, Ny int

	Values *sparse.DenseArray
	Lat    *sparse.DenseArray
	Lon    *sparse.DenseArray

	Projection *Projection
	Source     string
}

// At returns the value of cell (i, j), NaN outside the grid.
func (g *FieldGrid) At(i, j int) float64 {
	if i < 0 || i >= g.Nx || j < 0 || j >= g.Ny {
		return math.NaN()
	}
	return g.Values.Get(j, i)
}

// Range returns the smallest and largest finite values.
func (g *FieldGrid) Range() (float64, float64) {
	finite := make([]float64, 0, len(g.Values.Elements))
	for _, v := range g.Values.Elements {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(finite), floats.Max(finite)
}

// ValueAt samples the field at a projected point. Points outside the grid
// return NaN.
func (g *FieldGrid) ValueAt(x, y float64) float64 {
	fi, fj := g.Projection.GridIndex(x, y)
	return g.Interpolate(fi, fj)
}

// Interpolate samples the field at a fractional grid index.
func (g *FieldGrid) Interpolate(fi, fj float64) float64 {
	if fi < 0 || fj < 0 || fi > float64(g.Nx-1) || fj > float64(g.Ny-1) {
		return math.NaN()
	}

	i0 := int(math.Floor(fi))
	j0 := int(math.Floor(fj))
	if i0 == g.Nx-1 && i0 > 0 {
		i0--
	}
	if j0 == g.Ny-1 && j0 > 0 {
		j0--
	}

	if v, ok := g.bilinear(fi, fj, i0, j0); ok {
		return v
	}
	return g.inverseDistance(fi, fj, i0, j0)
}

// bilinear weights the four surrounding cells, renormalising over the
// non-missing ones. At least two valid corners are required.
func (g *FieldGrid) bilinear(fi, fj float64, i0, j0 int) (float64, bool) {
	u := fi - float64(i0)
	v := fj - float64(j0)

	corners := [4]struct {
		i, j int
		w    float64
	}{
		{i0, j0, (1 - u) * (1 - v)},
		{i0 + 1, j0, u * (1 - v)},
		{i0, j0 + 1, (1 - u) * v},
		{i0 + 1, j0 + 1, u * v},
	}

	validCount := 0
	totalWeight := 0.0
	result := 0.0
	for _, c := range corners {
		val := g.At(c.i, c.j)
		if math.IsNaN(val) {
			continue
		}
		validCount++
		result += val * c.w
		totalWeight += c.w
	}

	if validCount < 2 || totalWeight == 0 {
		return 0, false
	}
	return result / totalWeight, true
}

// inverseDistance falls back to nearby valid cells within a small radius.
func (g *FieldGrid) inverseDistance(fi, fj float64, i0, j0 int) float64 {
	const radius = 2

	var totalWeight, weightedSum float64
	for dj := -radius; dj <= radius+1; dj++ {
		for di := -radius; di <= radius+1; di++ {
			val := g.At(i0+di, j0+dj)
			if math.IsNaN(val) {
				continue
			}
			dx := float64(i0+di) - fi
			dy := float64(j0+dj) - fj
			dist2 := dx*dx + dy*dy
			if dist2 > radius*radius {
				continue
			}
			w := 1.0 / (dist2 + 0.001)
			weightedSum += val * w
			totalWeight += w
		}
	}

	if totalWeight == 0 {
		return math.NaN()
	}
	return weightedSum / totalWeight
}
