package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hstin/tracksnap/internal/config"
)

func TestCatalog_RecordAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := InitDB(path)
	require.NoError(t, err)
	defer db.Close()

	valid := time.Date(2012, 5, 1, 14, 0, 0, 0, time.UTC)
	created := time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)
	a := Snapshot{PointID: "b", Field: "crefuh", TrackID: "t1", Path: "/out/b.png",
		Lon: -97.5, Lat: 35.2, XMin: -1e5, XMax: 1e5, YMin: -1e5, YMax: 1e5,
		ValidTime: valid, Created: created}
	b := a
	b.PointID = "a"

	require.NoError(t, RecordSnapshot(db, a))
	require.NoError(t, RecordSnapshot(db, b))

	got, err := Snapshots(db)
	require.NoError(t, err)
	if diff := cmp.Diff([]Snapshot{b, a}, got); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_UpsertAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := InitDB(path)
	require.NoError(t, err)

	s := Snapshot{PointID: "p", Field: "crefuh", Path: "/out/p.png",
		ValidTime: time.Date(2012, 5, 1, 14, 0, 0, 0, time.UTC),
		Created:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, RecordSnapshot(db, s))
	s.Created = s.Created.Add(time.Hour)
	require.NoError(t, RecordSnapshot(db, s))
	require.NoError(t, db.Close())

	db, err = InitDB(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := Snapshots(db)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, s.Created, got[0].Created)
}

func TestCatalog_Metadata(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	cfg := &config.Config{
		Field:       "crefuh",
		GridDir:     "/grid",
		TrackDir:    "/tracks",
		InitialTime: time.Date(2012, 5, 1, 0, 0, 0, 0, time.UTC),
		ValidTime:   time.Date(2012, 5, 1, 14, 0, 0, 0, time.UTC),
		Padding:     config.DefaultPadding(),
		Format:      "png",
		DPI:         175,
	}
	require.NoError(t, UpdateMetadata(db, cfg))

	v, err := Metadata(db, "padding")
	require.NoError(t, err)
	assert.Equal(t, "100,100,100,100", v)

	v, err = Metadata(db, "grid_file")
	require.NoError(t, err)
	assert.Equal(t, "/grid/2012050100/diags_d01_2012-05-01_14_00_00.nc", v)

	v, err = Metadata(db, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)
}
