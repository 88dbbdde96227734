package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "text", false)

	logger.Debug("hidden")
	logger.Info("visible", "point_id", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=visible")
	assert.Contains(t, out, "point_id=abc")
}

func TestNewLogger_JSONDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "json", true)

	logger.Debug("field range", "min", 0.5)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "field range", rec["msg"])
	assert.Equal(t, 0.5, rec["min"])
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	m.SnapshotsWritten.Inc()
	m.SnapshotsWritten.Inc()
	m.SnapshotsSkipped.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SnapshotsWritten))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotsSkipped))

	// A second instance does not panic on registration.
	assert.NotPanics(t, func() { NewMetrics() })
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.SnapshotsWritten.Add(3)
	m.LastRunPoints.Set(4)
	m.RenderDuration.Observe(0.2)

	path := filepath.Join(t.TempDir(), "tracksnap.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "tracksnap_snapshots_written_total 3")
	assert.Contains(t, out, "tracksnap_last_run_track_points 4")
	assert.True(t, strings.Contains(out, "tracksnap_render_duration_seconds_count 1"))
}
