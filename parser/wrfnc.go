package parser

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

const (
	LatVar = "XLAT"
	LonVar = "XLONG"
)

// MissingVariableError is returned when a requested field is not in the file.
type MissingVariableError struct {
	Name      string
	Available []string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("variable %s not found; choices: %s", e.Name, strings.Join(e.Available, ", "))
}

// Dataset is an open WRF output file (classic netCDF).
type Dataset struct {
	Path string

	file *os.File
	nc   *cdf.File
	proj *Projection
}

func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WRF file: %w", err)
	}
	nc, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read netCDF header of %s: %w", path, err)
	}
	return &Dataset{Path: path, file: f, nc: nc}, nil
}

func (d *Dataset) Close() error {
	return d.file.Close()
}

// Variables lists the variable names in the file, sorted.
func (d *Dataset) Variables() []string {
	names := append([]string(nil), d.nc.Header.Variables()...)
	sort.Strings(names)
	return names
}

func (d *Dataset) HasVariable(name string) bool {
	for _, v := range d.nc.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// Field loads the first time slice of a 2-D variable together with its
// coordinates and the grid projection.
func (d *Dataset) Field(name string) (*FieldGrid, error) {
	if !d.HasVariable(name) {
		return nil, &MissingVariableError{Name: name, Available: d.Variables()}
	}

	values, err := d.read2D(name)
	if err != nil {
		return nil, err
	}
	lat, err := d.read2D(LatVar)
	if err != nil {
		return nil, fmt.Errorf("reading latitude: %w", err)
	}
	lon, err := d.read2D(LonVar)
	if err != nil {
		return nil, fmt.Errorf("reading longitude: %w", err)
	}
	if !sameShape(values, lat) || !sameShape(values, lon) {
		return nil, fmt.Errorf("%s is %v but coordinates are %v", name, values.Shape, lat.Shape)
	}

	projection, err := d.Projection()
	if err != nil {
		return nil, err
	}

	label, _ := d.nc.Header.GetAttribute(name, "long_name").(string)
	if label == "" {
		label, _ = d.nc.Header.GetAttribute(name, "description").(string)
	}
	if label == "" {
		label = name
	}
	units, _ := d.nc.Header.GetAttribute(name, "units").(string)

	return &FieldGrid{
		Name:       name,
		Label:      label,
		Units:      units,
		Nx:         values.Shape[1],
		Ny:         values.Shape[0],
		Values:     values,
		Lat:        lat,
		Lon:        lon,
		Projection: projection,
		Source:     d.Path,
	}, nil
}

// Projection derives the native projection from the WRF global attributes
// and anchors it on the south-west cell centre.
func (d *Dataset) Projection() (*Projection, error) {
	if d.proj != nil {
		return d.proj, nil
	}

	var attrs [7]float64
	for i, name := range []string{"MAP_PROJ", "TRUELAT1", "TRUELAT2", "MOAD_CEN_LAT", "STAND_LON", "DX", "DY"} {
		v, ok := attrFloat(d.nc.Header.GetAttribute("", name))
		if !ok {
			return nil, fmt.Errorf("missing global attribute %s in %s", name, d.Path)
		}
		attrs[i] = v
	}

	def, err := WRFProj4(int(attrs[0]), attrs[1], attrs[2], attrs[3], attrs[4])
	if err != nil {
		return nil, err
	}
	p, err := NewProjection(def)
	if err != nil {
		return nil, err
	}

	lat, err := d.read2D(LatVar)
	if err != nil {
		return nil, fmt.Errorf("reading latitude: %w", err)
	}
	lon, err := d.read2D(LonVar)
	if err != nil {
		return nil, fmt.Errorf("reading longitude: %w", err)
	}
	if err := p.Anchor(lon.Get(0, 0), lat.Get(0, 0), attrs[5], attrs[6]); err != nil {
		return nil, err
	}

	d.proj = p
	return p, nil
}

// read2D reads the first slice of every leading dimension of a variable.
func (d *Dataset) read2D(name string) (*sparse.DenseArray, error) {
	dims := d.nc.Header.Lengths(name)
	if len(dims) < 2 {
		return nil, fmt.Errorf("variable %s has %d dimensions, want at least 2", name, len(dims))
	}

	begin := make([]int, len(dims))
	end := make([]int, len(dims))
	for i := range dims {
		end[i] = 1
	}
	ny, nx := dims[len(dims)-2], dims[len(dims)-1]
	end[len(dims)-2], end[len(dims)-1] = ny, nx

	buf := d.nc.Header.ZeroValue(name, nx*ny)
	if _, err := d.nc.Reader(name, begin, end).Read(buf); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	fill, hasFill := attrFloat(d.nc.Header.GetAttribute(name, "_FillValue"))

	out := sparse.ZerosDense(ny, nx)
	switch vals := buf.(type) {
	case []float32:
		for i, v := range vals {
			out.Elements[i] = float64(v)
		}
	case []float64:
		copy(out.Elements, vals)
	case []int32:
		for i, v := range vals {
			out.Elements[i] = float64(v)
		}
	case []int16:
		for i, v := range vals {
			out.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("variable %s has unsupported type %T", name, buf)
	}

	if hasFill {
		for i, v := range out.Elements {
			if v == fill {
				out.Elements[i] = math.NaN()
			}
		}
	}
	return out, nil
}

func sameShape(a, b *sparse.DenseArray) bool {
	if len(a.Shape) != len(b.Shape) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	return true
}

// attrFloat unwraps a numeric netCDF attribute.
func attrFloat(attr interface{}) (float64, bool) {
	switch v := attr.(type) {
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []int32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int16:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	}
	return 0, false
}
