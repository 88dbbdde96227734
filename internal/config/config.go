package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Field       string    `validate:"required"`
	OutputDir   string    `validate:"required"`
	GridDir     string    `validate:"required"`
	TrackDir    string    `validate:"required"`
	InitialTime time.Time
	ValidTime   time.Time
	Padding     Padding

	Force    bool
	Counties bool
	Debug    bool

	FieldTable      string
	StatesShapefile string
	CountyShapefile string `validate:"required_if=Counties true"`

	Format      string  `validate:"oneof=png webp"`
	DPI         float64 `validate:"gt=0,lte=1200"`
	Catalog     string
	MetricsFile string
	LogFormat   string `validate:"oneof=text json"`
}

const (
	DefaultDPI = 175

	// Figure size in inches; pixels are FigureWidth*DPI x FigureHeight*DPI.
	FigureWidth  = 6.4
	FigureHeight = 4.8

	MinLeadTime = 12 * time.Hour
	MaxLeadTime = 36 * time.Hour

	TimeLayout = "2006010215"
)

// Padding holds the west, east, south and north window distances in km.
type Padding struct {
	West  float64 `validate:"gte=0"`
	East  float64 `validate:"gte=0"`
	South float64 `validate:"gte=0"`
	North float64 `validate:"gte=0"`
}

func DefaultPadding() Padding {
	return Padding{West: 100, East: 100, South: 100, North: 100}
}

// String and Set make *Padding usable as a flag.Value ("W,E,S,N").
func (p *Padding) String() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g,%g", p.West, p.East, p.South, p.North)
}

func (p *Padding) Set(s string) error {
	parsed, err := ParsePadding(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePadding reads four comma or space separated distances in km.
func ParsePadding(s string) (Padding, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 4 {
		return Padding{}, fmt.Errorf("padding needs 4 values (west,east,south,north), got %d", len(fields))
	}

	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Padding{}, fmt.Errorf("invalid padding value %q: %w", f, err)
		}
		if v < 0 {
			return Padding{}, fmt.Errorf("padding value %q is negative", f)
		}
		vals[i] = v
	}
	return Padding{West: vals[0], East: vals[1], South: vals[2], North: vals[3]}, nil
}

// ErrEmptyWindow is returned when the padding on one axis adds up to zero,
// which leaves the renderer a crop window with no area.
var ErrEmptyWindow = errors.New("crop window would be empty, nothing to render")

// LeadTimeError reports a forecast lead time outside [MinLeadTime, MaxLeadTime].
type LeadTimeError struct {
	LeadTime time.Duration
}

func (e *LeadTimeError) Error() string {
	return fmt.Sprintf("lead_time: %s not between %d and %d hours",
		e.LeadTime, int(MinLeadTime.Hours()), int(MaxLeadTime.Hours()))
}

func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want yyyymmddhh", s)
	}
	return t, nil
}

// CheckLeadTime accepts exactly the closed interval [12h, 36h].
func CheckLeadTime(initial, valid time.Time) error {
	lead := valid.Sub(initial)
	if lead < MinLeadTime || lead > MaxLeadTime {
		return &LeadTimeError{LeadTime: lead}
	}
	return nil
}

func (c *Config) LeadTime() time.Duration {
	return c.ValidTime.Sub(c.InitialTime)
}

// Validate runs before any I/O. The lead-time rule is checked first so it is
// always reported as a *LeadTimeError.
func (c *Config) Validate() error {
	if err := CheckLeadTime(c.InitialTime, c.ValidTime); err != nil {
		return err
	}

	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Padding.West+c.Padding.East == 0 {
		return fmt.Errorf("%w: west and east padding are both zero", ErrEmptyWindow)
	}
	if c.Padding.South+c.Padding.North == 0 {
		return fmt.Errorf("%w: south and north padding are both zero", ErrEmptyWindow)
	}
	return nil
}

// TrackFile is the hagelslag track-step CSV for the model run.
func (c *Config) TrackFile() string {
	name := "track_step_NCARSTORM_d01_" + c.InitialTime.Format("20060102") + "-0000_12.csv"
	return filepath.Join(c.TrackDir, name)
}

// GridFile is the WRF diagnostics file valid at ValidTime.
func (c *Config) GridFile() string {
	name := "diags_d01_" + c.ValidTime.Format("2006-01-02_15_04_05") + ".nc"
	return filepath.Join(c.GridDir, c.InitialTime.Format(TimeLayout), name)
}

// OutputFile is where the snapshot for pointID is written.
func (c *Config) OutputFile(pointID string) string {
	return filepath.Join(c.OutputDir, pointID+"."+c.Format)
}
