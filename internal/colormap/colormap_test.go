package colormap

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorSpec_Bin(t *testing.T) {
	spec, err := New("t", "T", "", []float64{0, 10, 20, 40}, []string{"#000000", "#808080", "#ffffff"})
	require.NoError(t, err)

	tests := []struct {
		v      float64
		bin    int
		inside bool
	}{
		{-0.1, 0, false},
		{0, 0, true},
		{9.99, 0, true},
		{10, 0, true},
		{10.01, 1, true},
		{20, 1, true},
		{20.5, 2, true},
		{25, 2, true},
		{40, 2, true},
		{40.01, 0, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		bin, ok := spec.Bin(tt.v)
		assert.Equal(t, tt.inside, ok, "v=%g", tt.v)
		if tt.inside {
			assert.Equal(t, tt.bin, bin, "v=%g", tt.v)
		}
	}

	c, ok := spec.ColorFor(15)
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}, c)
}

func TestColorSpec_CheckRange(t *testing.T) {
	spec, err := New("t", "T", "", []float64{5, 10, 75}, []string{"#000000", "#ffffff"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		min, max float64
		wantErr  bool
	}{
		{"overlapping", 0, 50, false},
		{"inside", 6, 7, false},
		{"touches top", 75, 90, false},
		{"touches bottom", -3, 5, false},
		{"all below", -10, 4.9, true},
		{"all above", 75.1, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := spec.CheckRange(tt.min, tt.max)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var rangeErr *RangeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Equal(t, []float64{5, 10, 75}, rangeErr.Levels)
			assert.Equal(t, tt.min, rangeErr.Min)
			assert.Equal(t, tt.max, rangeErr.Max)
			assert.Contains(t, err.Error(), "out of range")
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		levels []float64
		colors []string
	}{
		{"one level", []float64{1}, nil},
		{"descending", []float64{3, 2, 1}, []string{"#000000", "#000000"}},
		{"duplicate", []float64{1, 1, 2}, []string{"#000000", "#000000"}},
		{"color count", []float64{1, 2, 3}, []string{"#000000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("t", "T", "", tt.levels, tt.colors)
			assert.Error(t, err)
		})
	}
}

func TestResolver_Builtin(t *testing.T) {
	r := NewResolver()

	spec, err := r.Resolve("crefuh")
	require.NoError(t, err)
	assert.Equal(t, "crefuh", spec.Name)
	assert.Equal(t, "REFL_COM", spec.Variable)
	assert.Equal(t, "UP_HELI_MAX", spec.Overlay)
	assert.True(t, spec.HasOverlay())
	assert.Len(t, spec.Colors, len(spec.Levels)-1)

	for _, name := range r.Names() {
		_, err := r.Resolve(name)
		assert.NoError(t, err, name)
	}

	_, err = r.Resolve("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crefuh")
}

func writeTable(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile_OverridesBuiltin(t *testing.T) {
	path := writeTable(t, `
fields:
  cref:
    variable: REFL_10CM
    levels: [0, 20, 40]
    colors: ["#00ff00", "#ff0000"]
  t2:
    variable: T2
    levels: [250, 270, 290, 310]
    colors: ["#0000ff", "#ffffff", "#ff0000"]
`)
	r, err := LoadFile(path)
	require.NoError(t, err)

	spec, err := r.Resolve("cref")
	require.NoError(t, err)
	assert.Equal(t, "REFL_10CM", spec.Variable)
	assert.Equal(t, []float64{0, 20, 40}, spec.Levels)

	spec, err = r.Resolve("t2")
	require.NoError(t, err)
	assert.False(t, spec.HasOverlay())
	c, ok := spec.ColorFor(300)
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, c)

	_, err = r.Resolve("crefuh")
	assert.NoError(t, err)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not yaml", "fields: [unclosed"},
		{"no fields", "other: 1\n"},
		{"missing variable", "fields:\n  x:\n    levels: [1, 2]\n    colors: [\"#000000\"]\n"},
		{"bad color", "fields:\n  x:\n    variable: X\n    levels: [1, 2]\n    colors: [\"black\"]\n"},
		{"color count", "fields:\n  x:\n    variable: X\n    levels: [1, 2, 3]\n    colors: [\"#000000\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeTable(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
