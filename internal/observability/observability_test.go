package observability

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/console-client/internal/config"
)

func TestMetricsSnapshotIsCopy(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/user/profile", http.MethodGet, 200, time.Millisecond)
	m.RecordRequest("/api/user/profile", http.MethodGet, 200, time.Millisecond)
	m.RecordFailure("/api/user/profile", http.MethodGet, "AUTHORIZATION_EXPIRED")

	snap := m.Snapshot()
	require.Equal(t, int64(2), snap.Requests[RequestKey("/api/user/profile", http.MethodGet, 200)])
	require.Equal(t, int64(1), snap.Failures["/api/user/profile|GET|AUTHORIZATION_EXPIRED"])
	require.Equal(t, 2*time.Millisecond, snap.TotalDuration)

	snap.Requests["x"] = 9
	require.NotContains(t, m.Snapshot().Requests, "x")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", http.MethodGet, 0, 0)
	m.RecordFailure("/", http.MethodGet, "k")
	require.Empty(t, m.Snapshot().Requests)
}

func TestNewLoggerFallsBackOnBadLevel(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "loud", Encoding: "json"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, OrNop(nil))
}
