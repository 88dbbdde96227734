package render

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hstin/tracksnap/parser"
	"hstin/tracksnap/parser/parsertest"
)

func TestLoadDefaultStates(t *testing.T) {
	p, err := parser.NewProjection(parsertest.Proj4())
	require.NoError(t, err)

	b, err := LoadDefaultStates(p, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, StateStyle, b.Style)
	assert.Greater(t, b.Len(), 50)

	tests := []struct {
		name     string
		lon, lat float64
		want     bool
	}{
		{"kansas oklahoma line", -97.5, 37.0, true},
		{"colorado utah line", -109.05, 39.0, true},
		{"central kansas", -98.5, 38.5, false},
		{"gulf of mexico", -90.0, 25.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, err := p.Forward(tt.lon, tt.lat)
			require.NoError(t, err)
			e := Extent{XMin: x - 5000, XMax: x + 5000, YMin: y - 5000, YMax: y + 5000}
			assert.Equal(t, tt.want, len(b.Within(e)) > 0)
		})
	}
}

func TestLoadBoundaries_MissingFile(t *testing.T) {
	p, err := parser.NewProjection(parsertest.Proj4())
	require.NoError(t, err)

	_, err = LoadBoundaries(filepath.Join(t.TempDir(), "none.shp"), p, StateStyle, discardLogger())
	assert.Error(t, err)
}
