package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"hstin/tracksnap/internal/colormap"
	"hstin/tracksnap/internal/config"
	"hstin/tracksnap/internal/observability"
	"hstin/tracksnap/internal/snapshot"
	"hstin/tracksnap/parser"
)

const (
	defaultGridDir  = "/glade/p/mmm/parc/sobash/NSC/3KM_WRF_POST_12sec_ts"
	defaultTrackDir = "/glade/work/sobash/NSC_objects/track_data_ncarstorm_3km_csv_refl"
)

func main() {
	// Setup custom usage
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Storm Track Snapshot Generator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] INITIAL_TIME VALID_TIME\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Times are yyyymmddhh; the lead time must be 12 to 36 hours.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  Basic:     %s 2019052012 2019052100\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  Padding:   %s -p 50,50,50,50 -o snaps 2019052012 2019052100\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  Counties:  %s -counties -county-shapes counties.shp 2019052012 2019052100\n", os.Args[0])
	}

	var variable, outdir, idir, tdir string
	var force, debug bool
	padding := config.DefaultPadding()

	flag.StringVar(&variable, "v", "crefuh", "Field to plot (shorthand)")
	flag.StringVar(&variable, "variable", "crefuh", "Field to plot")
	flag.StringVar(&outdir, "o", ".", "Output directory (shorthand)")
	flag.StringVar(&outdir, "outdir", ".", "Output directory")
	flag.Var(&padding, "p", "Padding W,E,S,N in km (shorthand)")
	flag.Var(&padding, "padding", "Padding W,E,S,N in km around each track point")
	flag.BoolVar(&force, "f", false, "Overwrite existing images (shorthand)")
	flag.BoolVar(&force, "force", false, "Overwrite existing images")
	flag.StringVar(&idir, "i", defaultGridDir, "WRF output root (shorthand)")
	flag.StringVar(&idir, "idir", defaultGridDir, "WRF output root")
	flag.StringVar(&tdir, "t", defaultTrackDir, "Track-step CSV root (shorthand)")
	flag.StringVar(&tdir, "tdir", defaultTrackDir, "Track-step CSV root")
	flag.BoolVar(&debug, "d", false, "Debug logging and fine print (shorthand)")
	flag.BoolVar(&debug, "debug", false, "Debug logging and fine print on each image")

	counties := flag.Bool("counties", false, "Draw county borders")
	fields := flag.String("fields", "", "YAML field table overriding the built-in fields")
	states := flag.String("states", "", "State boundary shapefile (default: built-in US state lines)")
	countyShapes := flag.String("county-shapes", "", "County boundary shapefile (needed with -counties)")
	format := flag.String("format", "png", "Image format (png or webp)")
	dpi := flag.Float64("dpi", config.DefaultDPI, "Output resolution in dots per inch")
	catalog := flag.String("catalog", "", "SQLite catalog of written snapshots")
	metricsFile := flag.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	logFormat := flag.String("log-format", "text", "Log format (text or json)")
	help := flag.Bool("help", false, "Show help")

	// Parse flags
	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "Error: Need INITIAL_TIME and VALID_TIME\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] INITIAL_TIME VALID_TIME\n", os.Args[0])
		os.Exit(1)
	}

	initial, err := config.ParseTime(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	valid, err := config.ParseTime(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := &config.Config{
		Field:           variable,
		OutputDir:       outdir,
		GridDir:         idir,
		TrackDir:        tdir,
		InitialTime:     initial,
		ValidTime:       valid,
		Padding:         padding,
		Force:           force,
		Counties:        *counties,
		Debug:           debug,
		FieldTable:      *fields,
		StatesShapefile: *states,
		CountyShapefile: *countyShapes,
		Format:          *format,
		DPI:             *dpi,
		Catalog:         *catalog,
		MetricsFile:     *metricsFile,
		LogFormat:       *logFormat,
	}

	// Lead time and flags are checked before touching any file
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogFormat, cfg.Debug)
	logger.Debug("configuration", "field", cfg.Field, "padding", cfg.Padding.String(),
		"grid", cfg.GridFile(), "tracks", cfg.TrackFile(), "outdir", cfg.OutputDir)

	if _, err := snapshot.Generate(cfg, logger, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps run errors to process exit codes: 2 when the field never
// reaches the color levels, 1 for everything else.
func exitCode(err error) int {
	var rangeErr *colormap.RangeError
	var leadErr *config.LeadTimeError
	var missing *parser.MissingVariableError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &rangeErr):
		return 2
	case errors.As(err, &leadErr), errors.As(err, &missing):
		return 1
	default:
		return 1
	}
}
