package parser

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
)

func gridOf(nx, ny int, f func(i, j int) float64) *FieldGrid {
	vals := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			vals.Set(f(i, j), j, i)
		}
	}
	return &FieldGrid{Nx: nx, Ny: ny, Values: vals}
}

func TestRange_IgnoresNaN(t *testing.T) {
	g := gridOf(3, 3, func(i, j int) float64 {
		if i == 1 {
			return math.NaN()
		}
		return float64(i*10 + j)
	})
	min, max := g.Range()
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 22.0, max)
}

func TestRange_AllMissing(t *testing.T) {
	g := gridOf(2, 2, func(i, j int) float64 { return math.NaN() })
	min, max := g.Range()
	assert.True(t, math.IsNaN(min))
	assert.True(t, math.IsNaN(max))
}

func TestInterpolate_MissingCorner(t *testing.T) {
	g := gridOf(4, 4, func(i, j int) float64 {
		if i == 1 && j == 1 {
			return math.NaN()
		}
		return 5
	})
	assert.InDelta(t, 5, g.Interpolate(0.5, 0.5), 1e-9)
}

func TestInterpolate_FallsBackToNeighbours(t *testing.T) {
	g := gridOf(6, 6, func(i, j int) float64 {
		if i == 0 && j == 0 {
			return 8
		}
		if i <= 2 && j <= 2 {
			return math.NaN()
		}
		return 8
	})
	assert.InDelta(t, 8, g.Interpolate(1.5, 1.5), 1e-9)
}
