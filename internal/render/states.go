package render

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"hstin/tracksnap/parser"
)

// Generalized CONUS state lines in lon/lat on the WRF sphere, used when no
// states shapefile is configured.
//
//go:embed states/us_state_lines.*
var stateLines embed.FS

const stateLinesName = "us_state_lines"

// LoadDefaultStates projects the built-in state lines into target with
// StateStyle.
func LoadDefaultStates(target *parser.Projection, logger *slog.Logger) (*Boundaries, error) {
	dir, err := os.MkdirTemp("", "tracksnap-states-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	files, err := fs.Glob(stateLines, "states/"+stateLinesName+".*")
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		b, err := stateLines.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(dir, filepath.Base(name)), b, 0o644); err != nil {
			return nil, fmt.Errorf("failed to unpack state lines: %w", err)
		}
	}

	logger.Debug("using built-in state lines")
	return LoadBoundaries(filepath.Join(dir, stateLinesName+".shp"), target, StateStyle, logger)
}
