// Package parsertest writes small synthetic WRF diagnostics files for tests.
package parsertest

import (
	"fmt"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"

	"hstin/tracksnap/parser"
)

// Grid describes a Lambert conformal test domain centred on CenterLon/CenterLat.
type Grid struct {
	Nx, Ny    int
	DX        float64
	CenterLon float64
	CenterLat float64

	// Fields maps variable names to cell values (i west-east, j south-north).
	Fields map[string]func(i, j int) float32
	Units  map[string]string
}

// DefaultGrid is a 101 x 101, 3 km domain over Oklahoma.
func DefaultGrid() Grid {
	return Grid{
		Nx: 101, Ny: 101, DX: 3000,
		CenterLon: -97.5, CenterLat: 35.2,
		Fields: map[string]func(i, j int) float32{},
		Units:  map[string]string{},
	}
}

const (
	truelat1   = 30.0
	truelat2   = 60.0
	moadCenLat = 38.5
	standLon   = -97.5
)

// Proj4 is the projection definition written into the test files.
func Proj4() string {
	s, _ := parser.WRFProj4(1, truelat1, truelat2, moadCenLat, standLon)
	return s
}

// Write creates a classic netCDF file at path with XLAT, XLONG and the fields.
func Write(path string, g Grid) error {
	sr, err := proj.Parse(Proj4())
	if err != nil {
		return err
	}
	geo, err := proj.Parse(parser.GeographicProj4)
	if err != nil {
		return err
	}
	fwd, err := geo.NewTransform(sr)
	if err != nil {
		return err
	}
	inv, err := sr.NewTransform(geo)
	if err != nil {
		return err
	}

	cx, cy, err := fwd(g.CenterLon, g.CenterLat)
	if err != nil {
		return err
	}

	n := g.Nx * g.Ny
	lat := make([]float32, n)
	lon := make([]float32, n)
	for j := 0; j < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			x := cx + float64(i-g.Nx/2)*g.DX
			y := cy + float64(j-g.Ny/2)*g.DX
			lo, la, err := inv(x, y)
			if err != nil {
				return err
			}
			lon[j*g.Nx+i] = float32(lo)
			lat[j*g.Nx+i] = float32(la)
		}
	}

	names := make([]string, 0, len(g.Fields))
	for name := range g.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	dims := []string{"Time", "south_north", "west_east"}
	h := cdf.NewHeader(dims, []int{1, g.Ny, g.Nx})
	h.AddAttribute("", "TITLE", "synthetic WRF diagnostics")
	h.AddAttribute("", "MAP_PROJ", []int32{1})
	h.AddAttribute("", "TRUELAT1", []float32{truelat1})
	h.AddAttribute("", "TRUELAT2", []float32{truelat2})
	h.AddAttribute("", "MOAD_CEN_LAT", []float32{moadCenLat})
	h.AddAttribute("", "STAND_LON", []float32{standLon})
	h.AddAttribute("", "DX", []float32{float32(g.DX)})
	h.AddAttribute("", "DY", []float32{float32(g.DX)})

	h.AddVariable(parser.LatVar, dims, []float32{0})
	h.AddAttribute(parser.LatVar, "description", "LATITUDE, SOUTH IS NEGATIVE")
	h.AddAttribute(parser.LatVar, "units", "degree_north")
	h.AddVariable(parser.LonVar, dims, []float32{0})
	h.AddAttribute(parser.LonVar, "description", "LONGITUDE, WEST IS NEGATIVE")
	h.AddAttribute(parser.LonVar, "units", "degree_east")
	for _, name := range names {
		h.AddVariable(name, dims, []float32{0})
		h.AddAttribute(name, "description", name+" test field")
		h.AddAttribute(name, "units", g.Units[name])
	}
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	nc, err := cdf.Create(f, h)
	if err != nil {
		return err
	}

	write := func(name string, data []float32) error {
		w := nc.Writer(name, []int{0, 0, 0}, []int{1, g.Ny, g.Nx})
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		return nil
	}

	if err := write(parser.LatVar, lat); err != nil {
		return err
	}
	if err := write(parser.LonVar, lon); err != nil {
		return err
	}
	for _, name := range names {
		data := make([]float32, n)
		for j := 0; j < g.Ny; j++ {
			for i := 0; i < g.Nx; i++ {
				data[j*g.Nx+i] = g.Fields[name](i, j)
			}
		}
		if err := write(name, data); err != nil {
			return err
		}
	}
	return nil
}

// FieldGrid builds an in-memory grid in the test projection with the centre
// of cell (0, 0) at projected (0, 0). Lat and Lon are left zero.
func FieldGrid(name, units string, nx, ny int, dx float64, f func(i, j int) float64) (*parser.FieldGrid, error) {
	p, err := parser.NewProjection(Proj4())
	if err != nil {
		return nil, err
	}
	p.DX, p.DY = dx, dx

	vals := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			vals.Set(f(i, j), j, i)
		}
	}
	return &parser.FieldGrid{
		Name:       name,
		Label:      name,
		Units:      units,
		Nx:         nx,
		Ny:         ny,
		Values:     vals,
		Lat:        sparse.ZerosDense(ny, nx),
		Lon:        sparse.ZerosDense(ny, nx),
		Projection: p,
		Source:     "memory",
	}, nil
}
