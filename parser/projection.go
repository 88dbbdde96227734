package parser

import (
	"fmt"

	"github.com/ctessum/geom/proj"
)

// WRF computes its map factors on a sphere of this radius.
const EarthRadius = 6370000.0

// GeographicProj4 is lon/lat on the WRF sphere.
var GeographicProj4 = fmt.Sprintf("+proj=longlat +a=%g +b=%g +no_defs", EarthRadius, EarthRadius)

// Projection is the native map projection of a model grid. Cell (i, j) has
// its centre at (X0 + i*DX, Y0 + j*DY) in projected metres.
type Projection struct {
	Proj4 string
	SR    *proj.SR

	X0, Y0 float64
	DX, DY float64

	forward proj.Transformer
}

// NewProjection parses a PROJ.4 definition and prepares the lon/lat to
// projected transform.
func NewProjection(proj4 string) (*Projection, error) {
	sr, err := proj.Parse(proj4)
	if err != nil {
		return nil, fmt.Errorf("parse projection %q: %w", proj4, err)
	}
	geo, err := proj.Parse(GeographicProj4)
	if err != nil {
		return nil, fmt.Errorf("parse geographic projection: %w", err)
	}
	forward, err := geo.NewTransform(sr)
	if err != nil {
		return nil, fmt.Errorf("create lon/lat transform: %w", err)
	}
	return &Projection{Proj4: proj4, SR: sr, forward: forward}, nil
}

// WRFProj4 builds the PROJ.4 string for a WRF MAP_PROJ code.
func WRFProj4(mapProj int, truelat1, truelat2, moadCenLat, standLon float64) (string, error) {
	switch mapProj {
	case 1:
		return fmt.Sprintf("+proj=lcc +lat_1=%g +lat_2=%g +lat_0=%g +lon_0=%g +a=%g +b=%g +units=m +no_defs",
			truelat1, truelat2, moadCenLat, standLon, EarthRadius, EarthRadius), nil
	case 2:
		pole := 90.0
		if truelat1 < 0 {
			pole = -90
		}
		return fmt.Sprintf("+proj=stere +lat_0=%g +lat_ts=%g +lon_0=%g +a=%g +b=%g +units=m +no_defs",
			pole, truelat1, standLon, EarthRadius, EarthRadius), nil
	case 3:
		return fmt.Sprintf("+proj=merc +lat_ts=%g +lon_0=%g +a=%g +b=%g +units=m +no_defs",
			truelat1, standLon, EarthRadius, EarthRadius), nil
	default:
		return "", fmt.Errorf("unsupported MAP_PROJ %d", mapProj)
	}
}

// Forward converts a geographic coordinate to projected metres.
func (p *Projection) Forward(lon, lat float64) (float64, float64, error) {
	x, y, err := p.forward(lon, lat)
	if err != nil {
		return 0, 0, fmt.Errorf("transform (%g, %g): %w", lon, lat, err)
	}
	return x, y, nil
}

// Anchor places grid cell (0, 0) at the given lon/lat with the given spacing.
func (p *Projection) Anchor(lon, lat, dx, dy float64) error {
	x, y, err := p.Forward(lon, lat)
	if err != nil {
		return err
	}
	p.X0, p.Y0 = x, y
	p.DX, p.DY = dx, dy
	return nil
}

// GridIndex returns the fractional grid index of a projected point.
func (p *Projection) GridIndex(x, y float64) (float64, float64) {
	return (x - p.X0) / p.DX, (y - p.Y0) / p.DY
}

// CellCenter is the inverse of GridIndex.
func (p *Projection) CellCenter(fi, fj float64) (float64, float64) {
	return p.X0 + fi*p.DX, p.Y0 + fj*p.DY
}

// TransformFrom returns a transform from src into this projection.
func (p *Projection) TransformFrom(src *proj.SR) (proj.Transformer, error) {
	return src.NewTransform(p.SR)
}
