package tracks

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// TrackPoint is one detected storm object at one valid time.
type TrackPoint struct {
	Location  orb.Point
	PointID   string
	TrackID   string
	RunDate   time.Time
	ValidDate time.Time
}

func (p TrackPoint) Lon() float64 { return p.Location.Lon() }
func (p TrackPoint) Lat() float64 { return p.Location.Lat() }

const (
	colRunDate   = "Run_Date"
	colValidDate = "Valid_Date"
	colLon       = "Centroid_Lon"
	colLat       = "Centroid_Lat"
	colStepID    = "Step_ID"
	colTrackID   = "Track_ID"
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006010215",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ReadFile returns the points of a track-step CSV that are valid at valid,
// in file order.
func ReadFile(path string, valid time.Time) ([]TrackPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track file: %w", err)
	}
	defer f.Close()

	points, err := Read(f, valid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

func Read(r io.Reader, valid time.Time) ([]TrackPoint, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty track file")
		}
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{colValidDate, colLon, colLat, colStepID} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %s", name)
		}
	}

	var points []TrackPoint
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		validDate, err := parseDate(rec[idx[colValidDate]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !validDate.Equal(valid) {
			continue
		}

		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[idx[colLon]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s: %w", line, colLon, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[idx[colLat]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s: %w", line, colLat, err)
		}

		p := TrackPoint{
			Location:  orb.Point{lon, lat},
			PointID:   strings.TrimSpace(rec[idx[colStepID]]),
			ValidDate: validDate,
		}
		if i, ok := idx[colTrackID]; ok {
			p.TrackID = strings.TrimSpace(rec[i])
		}
		if i, ok := idx[colRunDate]; ok {
			if p.RunDate, err = parseDate(rec[i]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if p.PointID == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, colStepID)
		}
		points = append(points, p)
	}
	return points, nil
}
