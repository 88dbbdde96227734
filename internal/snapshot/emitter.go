package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"hstin/tracksnap/internal/config"
	"hstin/tracksnap/internal/db"
	"hstin/tracksnap/internal/observability"
	"hstin/tracksnap/internal/render"
	"hstin/tracksnap/internal/tracks"
)

// Summary counts what a run did with its track points.
type Summary struct {
	Points  int
	Written int
	Skipped int
}

// Emitter writes one image per track point, reusing a single Figure.
type Emitter struct {
	cfg      *config.Config
	cropper  render.Cropper
	gridPath string

	catalog *sql.DB
	metrics *observability.Metrics
	clock   clockwork.Clock
	logger  *slog.Logger
}

func NewEmitter(cfg *config.Config, cropper render.Cropper, logger *slog.Logger) *Emitter {
	return &Emitter{
		cfg:      cfg,
		cropper:  cropper,
		gridPath: cfg.GridFile(),
		clock:    clockwork.NewRealClock(),
		logger:   logger,
	}
}

// SetClock swaps the time source used for the created stamp. Pass nil to
// reset to real time.
func (e *Emitter) SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	e.clock = c
}

// SetCatalog records every written snapshot in db.
func (e *Emitter) SetCatalog(db *sql.DB) { e.catalog = db }

func (e *Emitter) SetMetrics(m *observability.Metrics) { e.metrics = m }

// SetGridPath sets the grid path shown in the debug fine print.
func (e *Emitter) SetGridPath(path string) { e.gridPath = path }

// Emit processes points in order. An existing image is skipped unless
// Force is set; any other failure stops the run.
func (e *Emitter) Emit(fig *render.Figure, points []tracks.TrackPoint) (Summary, error) {
	summary := Summary{Points: len(points)}
	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, pt := range points {
		path := e.cfg.OutputFile(pt.PointID)

		if !e.cfg.Force {
			exists, err := fileExists(path)
			if err != nil {
				return summary, err
			}
			if exists {
				e.logger.Info(path + " exists. Skipping. Use -f option to override.")
				summary.Skipped++
				if e.metrics != nil {
					e.metrics.SnapshotsSkipped.Inc()
				}
				continue
			}
		}

		if err := e.emitOne(fig, pt, path); err != nil {
			return summary, fmt.Errorf("point %s: %w", pt.PointID, err)
		}
		summary.Written++
	}
	return summary, nil
}

func (e *Emitter) emitOne(fig *render.Figure, pt tracks.TrackPoint, path string) error {
	extent, err := e.cropper.Window(pt)
	if err != nil {
		return err
	}
	if err := fig.SetExtent(extent); err != nil {
		return err
	}

	now := e.clock.Now()
	if e.cfg.Debug {
		fig.SetFineprint(
			e.gridPath,
			"track "+pt.TrackID,
			"created "+now.Format("2006-01-02 15:04:05"),
		)
	} else {
		fig.SetFineprint()
	}

	if err := fig.Save(path, e.cfg.Format); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.SnapshotsWritten.Inc()
		e.metrics.RenderDuration.Observe(e.clock.Since(now).Seconds())
	}
	e.logger.Info("created "+path, "point_id", pt.PointID)

	if e.catalog != nil {
		err := db.RecordSnapshot(e.catalog, db.Snapshot{
			PointID:   pt.PointID,
			Field:     e.cfg.Field,
			TrackID:   pt.TrackID,
			Path:      path,
			Lon:       pt.Lon(),
			Lat:       pt.Lat(),
			XMin:      extent.XMin,
			XMax:      extent.XMax,
			YMin:      extent.YMin,
			YMax:      extent.YMax,
			ValidTime: pt.ValidDate,
			Created:   now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
