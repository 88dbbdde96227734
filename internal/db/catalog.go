package db

import (
	"database/sql"
	"fmt"
	"time"

	"hstin/tracksnap/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Snapshot is one catalog row, keyed by point id and field.
type Snapshot struct {
	PointID   string
	Field     string
	TrackID   string
	Path      string
	Lon, Lat  float64
	XMin      float64
	XMax      float64
	YMin      float64
	YMax      float64
	ValidTime time.Time
	Created   time.Time
}

const timeLayout = time.RFC3339

// InitDB opens the catalog, creating its tables on first use. Existing rows
// are kept so reruns add to the same catalog.
func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			point_id TEXT,
			field TEXT,
			track_id TEXT,
			path TEXT,
			lon REAL,
			lat REAL,
			xmin REAL,
			xmax REAL,
			ymin REAL,
			ymax REAL,
			valid_time TEXT,
			created TEXT,
			PRIMARY KEY (point_id, field)
		);
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT,
			value TEXT,
			PRIMARY KEY (name)
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_valid on snapshots (valid_time);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// UpdateMetadata records the settings of the latest run.
func UpdateMetadata(db *sql.DB, cfg *config.Config) error {
	values := map[string]string{
		"field":        cfg.Field,
		"initial_time": cfg.InitialTime.Format(timeLayout),
		"valid_time":   cfg.ValidTime.Format(timeLayout),
		"padding":      cfg.Padding.String(),
		"format":       cfg.Format,
		"dpi":          fmt.Sprintf("%g", cfg.DPI),
		"grid_file":    cfg.GridFile(),
		"track_file":   cfg.TrackFile(),
	}
	for name, value := range values {
		_, err := db.Exec("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)", name, value)
		if err != nil {
			return err
		}
	}
	return nil
}

// RecordSnapshot inserts or replaces the row for s.
func RecordSnapshot(db *sql.DB, s Snapshot) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO snapshots
			(point_id, field, track_id, path, lon, lat, xmin, xmax, ymin, ymax, valid_time, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.PointID, s.Field, s.TrackID, s.Path, s.Lon, s.Lat,
		s.XMin, s.XMax, s.YMin, s.YMax,
		s.ValidTime.UTC().Format(timeLayout), s.Created.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record snapshot %s: %w", s.PointID, err)
	}
	return nil
}

// Snapshots lists the catalog ordered by valid time and point id.
func Snapshots(db *sql.DB) ([]Snapshot, error) {
	rows, err := db.Query(`
		SELECT point_id, field, track_id, path, lon, lat, xmin, xmax, ymin, ymax, valid_time, created
		FROM snapshots ORDER BY valid_time, point_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var valid, created string
		if err := rows.Scan(&s.PointID, &s.Field, &s.TrackID, &s.Path, &s.Lon, &s.Lat,
			&s.XMin, &s.XMax, &s.YMin, &s.YMax, &valid, &created); err != nil {
			return nil, err
		}
		if s.ValidTime, err = time.Parse(timeLayout, valid); err != nil {
			return nil, err
		}
		if s.Created, err = time.Parse(timeLayout, created); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Metadata returns one metadata value, "" when unset.
func Metadata(db *sql.DB, name string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM metadata WHERE name = ?", name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
