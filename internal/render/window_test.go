package render

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hstin/tracksnap/internal/config"
	"hstin/tracksnap/internal/tracks"
	"hstin/tracksnap/parser"
	"hstin/tracksnap/parser/parsertest"
)

func TestCropper_WindowSize(t *testing.T) {
	p, err := parser.NewProjection(parsertest.Proj4())
	require.NoError(t, err)

	tests := []struct {
		name    string
		padding config.Padding
		point   orb.Point
	}{
		{"default", config.DefaultPadding(), orb.Point{-97.5, 35.2}},
		{"asymmetric", config.Padding{West: 10, East: 250, South: 0, North: 40}, orb.Point{-90.1, 41.7}},
		{"far from centre", config.Padding{West: 50, East: 50, South: 75, North: 25}, orb.Point{-120, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewCropper(p, tt.padding).Window(tracks.TrackPoint{Location: tt.point, PointID: "a"})
			require.NoError(t, err)

			assert.InDelta(t, (tt.padding.West+tt.padding.East)*1000, e.Width(), 1e-6)
			assert.InDelta(t, (tt.padding.South+tt.padding.North)*1000, e.Height(), 1e-6)

			x, y, err := p.Forward(tt.point.Lon(), tt.point.Lat())
			require.NoError(t, err)
			assert.InDelta(t, x-tt.padding.West*1000, e.XMin, 1e-6)
			assert.InDelta(t, y+tt.padding.North*1000, e.YMax, 1e-6)
		})
	}
}

func TestExtent_Bounds(t *testing.T) {
	e := Extent{XMin: -1, XMax: 2, YMin: -3, YMax: 4}
	b := e.Bounds()
	assert.Equal(t, -1.0, b.Min.X)
	assert.Equal(t, -3.0, b.Min.Y)
	assert.Equal(t, 2.0, b.Max.X)
	assert.Equal(t, 4.0, b.Max.Y)
}

func TestGridExtent(t *testing.T) {
	g := grid(t, 11, 6, func(i, j int) float64 { return 0 })
	assert.Equal(t, Extent{XMin: 0, XMax: 30000, YMin: 0, YMax: 15000}, GridExtent(g))
}
