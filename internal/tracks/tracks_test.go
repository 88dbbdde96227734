package tracks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Step_ID,Track_ID,Run_Date,Valid_Date,Centroid_Lon,Centroid_Lat
d01_REFL_COM_20120501-0000_13_13_000,d01_REFL_COM_20120501-0000_13_13_000,2012-05-01 00:00:00,2012-05-01 13:00:00,-97.5,35.2
d01_REFL_COM_20120501-0000_14_14_000,d01_REFL_COM_20120501-0000_13_13_000,2012-05-01 00:00:00,2012-05-01 14:00:00,-97.1,35.4
d01_REFL_COM_20120501-0000_14_14_001,d01_REFL_COM_20120501-0000_14_14_001,2012-05-01 00:00:00,2012-05-01 14:00:00,-90.0,40.0
`

func TestRead_FiltersByValidTime(t *testing.T) {
	valid := time.Date(2012, 5, 1, 14, 0, 0, 0, time.UTC)

	points, err := Read(strings.NewReader(sampleCSV), valid)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "d01_REFL_COM_20120501-0000_14_14_000", points[0].PointID)
	assert.Equal(t, "d01_REFL_COM_20120501-0000_13_13_000", points[0].TrackID)
	assert.InDelta(t, -97.1, points[0].Lon(), 1e-9)
	assert.InDelta(t, 35.4, points[0].Lat(), 1e-9)
	assert.Equal(t, time.Date(2012, 5, 1, 0, 0, 0, 0, time.UTC), points[0].RunDate)
	assert.True(t, points[0].ValidDate.Equal(valid))

	assert.Equal(t, "d01_REFL_COM_20120501-0000_14_14_001", points[1].PointID)
}

func TestRead_NoMatchingPoints(t *testing.T) {
	valid := time.Date(2012, 5, 2, 0, 0, 0, 0, time.UTC)
	points, err := Read(strings.NewReader(sampleCSV), valid)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestRead_KeepsDuplicatesInOrder(t *testing.T) {
	csv := "Step_ID,Valid_Date,Centroid_Lon,Centroid_Lat\n" +
		"a,2012050114,-97,35\n" +
		"a,2012050114,-96,36\n"
	points, err := Read(strings.NewReader(csv), time.Date(2012, 5, 1, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, -97.0, points[0].Lon(), 1e-9)
	assert.InDelta(t, -96.0, points[1].Lon(), 1e-9)
}

func TestRead_Errors(t *testing.T) {
	valid := time.Date(2012, 5, 1, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "empty track file"},
		{"missing column", "Step_ID,Valid_Date,Centroid_Lon\n", "missing column Centroid_Lat"},
		{"bad date", "Step_ID,Valid_Date,Centroid_Lon,Centroid_Lat\na,yesterday,1,2\n", "unrecognized date"},
		{"bad lon", "Step_ID,Valid_Date,Centroid_Lon,Centroid_Lat\na,2012-05-01 14:00:00,x,2\n", "invalid Centroid_Lon"},
		{"empty id", "Step_ID,Valid_Date,Centroid_Lon,Centroid_Lat\n ,2012-05-01 14:00:00,1,2\n", "empty Step_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), valid)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	points, err := ReadFile(path, time.Date(2012, 5, 1, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, points, 1)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), time.Time{})
	assert.Error(t, err)
}
