package colormap

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// NWS reflectivity ramp, 5 to 75 dBZ.
var reflectivityColors = []string{
	"#00ecec", "#01a0f6", "#0000f6", "#00ff00", "#00c800", "#009000", "#ffff00",
	"#e7c000", "#ff9000", "#ff0000", "#d60000", "#c00000", "#ff00ff", "#9955c9",
}

var reflectivityLevels = []float64{5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70, 75}

var builtin = map[string]ColorSpec{
	"crefuh": {
		Variable: "REFL_COM",
		Overlay:  "UP_HELI_MAX",
		Levels:   reflectivityLevels,
		Colors:   reflectivityColors,
	},
	"cref": {
		Variable: "REFL_COM",
		Levels:   reflectivityLevels,
		Colors:   reflectivityColors,
	},
	"uhmax": {
		Variable: "UP_HELI_MAX",
		Levels:   []float64{25, 50, 75, 100, 150, 200, 250, 300, 400, 500},
		Colors: []string{
			"#d8d8d8", "#a6a6a6", "#7fcdbb", "#41b6c4", "#1d91c0",
			"#225ea8", "#fed976", "#fd8d3c", "#e31a1c",
		},
	},
	"wspd10max": {
		Variable: "WSPD10MAX",
		Levels:   []float64{10, 15, 20, 25, 30, 35, 40},
		Colors:   []string{"#c6dbef", "#9ecae1", "#6baed6", "#fdae6b", "#f16913", "#a63603"},
	},
}

// fieldTable is the layout of a field table YAML file.
type fieldTable struct {
	Fields map[string]ColorSpec `yaml:"fields" validate:"required,dive"`
}

// Resolver maps a diagnostic name to its ColorSpec.
type Resolver struct {
	specs map[string]ColorSpec
}

// NewResolver returns a resolver over the built-in field table.
func NewResolver() *Resolver {
	r := &Resolver{specs: make(map[string]ColorSpec, len(builtin))}
	for name, spec := range builtin {
		spec.Name = name
		r.specs[name] = spec
	}
	return r
}

// LoadFile reads a YAML field table. Its entries replace built-in entries of
// the same name.
func LoadFile(filename string) (*Resolver, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening field table: %w", err)
	}

	var table fieldTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("error parsing field table %s: %w", filename, err)
	}
	if err := validator.New().Struct(table); err != nil {
		return nil, fmt.Errorf("invalid field table %s: %w", filename, err)
	}

	r := NewResolver()
	for name, spec := range table.Fields {
		spec.Name = name
		if err := spec.prepare(); err != nil {
			return nil, err
		}
		r.specs[name] = spec
	}
	return r, nil
}

// Resolve returns the ready-to-use ColorSpec for name.
func (r *Resolver) Resolve(name string) (ColorSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return ColorSpec{}, fmt.Errorf("no field info for %q; choices: %s", name, strings.Join(r.Names(), ", "))
	}
	if err := spec.prepare(); err != nil {
		return ColorSpec{}, err
	}
	return spec, nil
}

func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
