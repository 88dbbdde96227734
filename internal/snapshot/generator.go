package snapshot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"hstin/tracksnap/internal/colormap"
	"hstin/tracksnap/internal/config"
	"hstin/tracksnap/internal/db"
	"hstin/tracksnap/internal/observability"
	"hstin/tracksnap/internal/render"
	"hstin/tracksnap/internal/tracks"
	"hstin/tracksnap/parser"
)

// Generate runs one snapshot job: load the field, build the figure once and
// emit an image per track point. Progress lines go to out.
func Generate(cfg *config.Config, logger *slog.Logger, out io.Writer) (Summary, error) {
	startTime := time.Now()

	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}

	resolver := colormap.NewResolver()
	if cfg.FieldTable != "" {
		var err error
		if resolver, err = colormap.LoadFile(cfg.FieldTable); err != nil {
			return Summary{}, fmt.Errorf("failed to load field table: %w", err)
		}
	}
	spec, err := resolver.Resolve(cfg.Field)
	if err != nil {
		return Summary{}, err
	}
	logger.Debug("field", "name", cfg.Field, "variable", spec.Variable, "overlay", spec.Overlay, "levels", spec.Levels)

	gridPath := cfg.GridFile()
	logger.Info("opening grid", "path", gridPath)
	ds, err := parser.Open(gridPath)
	if err != nil {
		return Summary{}, err
	}
	defer ds.Close()

	fig, err := buildFigure(cfg, spec, ds, logger)
	if err != nil {
		return Summary{}, err
	}
	field := fig.Field

	trackPath := cfg.TrackFile()
	logger.Debug("reading track file", "path", trackPath)
	points, err := tracks.ReadFile(trackPath, cfg.ValidTime)
	if err != nil {
		return Summary{}, err
	}
	logger.Info("track points", "count", len(points), "valid_time", cfg.ValidTime.Format(time.RFC3339))

	metrics := observability.NewMetrics()
	metrics.LastRunPoints.Set(float64(len(points)))

	emitter := NewEmitter(cfg, render.NewCropper(field.Projection, cfg.Padding), logger)
	emitter.SetMetrics(metrics)
	if abs, err := filepath.Abs(gridPath); err == nil {
		emitter.SetGridPath(abs)
	}

	if cfg.Catalog != "" {
		database, err := db.InitDB(cfg.Catalog)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to initialize catalog: %w", err)
		}
		defer database.Close()

		if err := db.UpdateMetadata(database, cfg); err != nil {
			return Summary{}, fmt.Errorf("failed to update catalog metadata: %w", err)
		}
		emitter.SetCatalog(database)
	}

	summary, err := emitter.Emit(fig, points)
	if cfg.MetricsFile != "" {
		if merr := metrics.WriteTextfile(cfg.MetricsFile); merr != nil {
			err = errors.Join(err, fmt.Errorf("failed to write metrics: %w", merr))
		}
	}
	if err != nil {
		return summary, err
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(out, "Snapshots complete! %d written, %d skipped. Took %s\n",
		summary.Written, summary.Skipped, elapsed)
	fmt.Fprintln(out, "Run this command to create a montage")
	fmt.Fprintf(out, "montage -geometry 70%% -tile 5x4 %s %s\n",
		filepath.Join(cfg.OutputDir, "*."+cfg.Format), filepath.Join(cfg.OutputDir, "montage."+cfg.Format))

	return summary, nil
}

// buildFigure loads the primary field, refuses it when it misses the color
// levels, then adds the overlay strategy and boundary layers.
func buildFigure(cfg *config.Config, spec colormap.ColorSpec, ds *parser.Dataset, logger *slog.Logger) (*render.Figure, error) {
	field, err := ds.Field(spec.Variable)
	if err != nil {
		return nil, err
	}
	if _, _, err := render.CheckRange(field, spec); err != nil {
		return nil, err
	}

	strategy, err := render.StrategyFor(spec, ds, logger)
	if err != nil {
		return nil, err
	}

	opts := render.Options{DPI: cfg.DPI, Logger: logger}
	if cfg.StatesShapefile != "" {
		opts.States, err = render.LoadBoundaries(cfg.StatesShapefile, field.Projection, render.StateStyle, logger)
	} else {
		opts.States, err = render.LoadDefaultStates(field.Projection, logger)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Counties {
		logger.Info("adding counties", "path", cfg.CountyShapefile)
		if opts.Counties, err = render.LoadBoundaries(cfg.CountyShapefile, field.Projection, render.CountyStyle, logger); err != nil {
			return nil, err
		}
	}

	return render.NewFigure(field, spec, strategy, opts)
}
