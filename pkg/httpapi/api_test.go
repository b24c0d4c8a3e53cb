package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/sambigeara/permcalc/internal/testutil/stubsys"
	"github.com/sambigeara/permcalc/pkg/convert"
	"github.com/sambigeara/permcalc/pkg/observability/metrics"
	"github.com/sambigeara/permcalc/pkg/sysinfo"
)

var (
	started = time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	now     = started.Add(time.Hour + 2*time.Minute + 3*time.Second)
)

type fixture struct {
	api *API
	sys *stubsys.Collector
	rec *metrics.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec, err := metrics.NewRecorder()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Shutdown(context.Background()) })

	sys := stubsys.New(stubsys.Healthy())
	api := New(Options{
		Log:        zap.NewNop(),
		Converter:  convert.New(zap.NewNop(), rec, noop.NewTracerProvider()),
		System:     sys,
		Counters:   rec,
		Thresholds: sysinfo.Thresholds{MemoryPercent: 90, DiskPercent: 95},
		Info:       Info{Environment: "test"},
		Started:    started,
		Now:        func() time.Time { return now },
	})
	return &fixture{api: api, sys: sys, rec: rec}
}

func (f *fixture) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.api.Handler().ServeHTTP(rr, req)

	var out map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr, out
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		f := newFixture(t)
		rr, body := f.do(t, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "2026-01-02T04:02:03Z", body["timestamp"])
		assert.InDelta(t, 3723.0, body["uptime_seconds"], 0.001)
		assert.Equal(t, DefaultVersion, body["version"])
		assert.NotContains(t, body, "warnings")
	})

	t.Run("warning", func(t *testing.T) {
		f := newFixture(t)
		snap := stubsys.Healthy()
		snap.Memory.Percent = 91
		snap.Disk.Percent = 95.5
		f.sys.Set(snap, nil)

		rr, body := f.do(t, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "warning", body["status"])
		assert.Equal(t, []any{sysinfo.WarnMemory, sysinfo.WarnDisk}, body["warnings"])
	})

	t.Run("at threshold is healthy", func(t *testing.T) {
		f := newFixture(t)
		snap := stubsys.Healthy()
		snap.Memory.Percent = 90
		f.sys.Set(snap, nil)

		rr, _ := f.do(t, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unhealthy", func(t *testing.T) {
		f := newFixture(t)
		f.sys.Set(sysinfo.Snapshot{}, errors.New("no procfs"))

		rr, body := f.do(t, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "unhealthy", body["status"])
		assert.Equal(t, "no procfs", body["error"])
	})
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	rr, body := f.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, map[string]any{
		"application":    DefaultApplication,
		"status":         "running",
		"timestamp":      "2026-01-02T04:02:03Z",
		"uptime_seconds": 3723.0,
		"environment":    "test",
		"version":        DefaultVersion,
	}, body)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)

	rr, body := f.do(t, http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{}, body["conversions"])
	assert.InDelta(t, 12.5, body["cpu"].(map[string]any)["percent"], 0.001)
	assert.InDelta(t, 3600.0, body["host_uptime_seconds"], 0.001)

	f.do(t, http.MethodGet, "/api/encode/755", "")
	f.do(t, http.MethodGet, "/api/encode/759", "")

	var resp MetricsResponse
	rr, _ = f.do(t, http.MethodGet, "/api/metrics", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []metrics.ConversionCount{
		{Direction: "encode", Outcome: "InvalidDigit", Count: 1},
		{Direction: "encode", Outcome: "ok", Count: 1},
	}, resp.Conversions)

	f.sys.Set(sysinfo.Snapshot{}, errors.New("gone"))
	rr, body = f.do(t, http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to get metrics", body["error"])
}

func TestEcho(t *testing.T) {
	f := newFixture(t)

	rr, body := f.do(t, http.MethodPost, "/api/echo", `{"mode":"755"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"mode": "755"}, body["echo"])
	assert.Equal(t, http.MethodPost, body["method"])
	assert.Equal(t, "application/json", body["headers"].(map[string]any)["Content-Type"])

	rr, body = f.do(t, http.MethodPost, "/api/echo", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{}, body["echo"])

	rr, body = f.do(t, http.MethodPost, "/api/echo", "{not json")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid JSON data", body["error"])
}

func TestEncodeDecodeRoutes(t *testing.T) {
	f := newFixture(t)

	rr, body := f.do(t, http.MethodGet, "/api/encode/755", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"octal": "755", "symbolic": "rwxr-xr-x"}, body)

	rr, body = f.do(t, http.MethodGet, "/api/decode/rw-r--r--", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"octal": "644", "symbolic": "rw-r--r--"}, body)

	for _, tc := range []struct {
		target, kind, message string
	}{
		{"/api/encode/75", "InvalidLength", "octal permission must be 3 characters, got 2"},
		{"/api/encode/7a5", "InvalidCharacter", "character 'a' at position 1 is not a digit"},
		{"/api/encode/759", "InvalidDigit", "digit '9' at position 2 is out of range 0-7"},
		{"/api/decode/rwxr-xr-z", "InvalidCharacter", "character 'z' at position 8 is not one of r, w, x or -"},
		{"/api/decode/xrwr-xr-x", "InvalidPositionalCharacter", "character 'x' at position 0 is not allowed in the read slot (want 'r' or '-')"},
	} {
		t.Run(tc.target, func(t *testing.T) {
			rr, body := f.do(t, http.MethodGet, tc.target, "")
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tc.kind, body["error"])
			assert.Equal(t, tc.message, body["message"])
		})
	}
}

func TestEncodeDecodeEmptySegment(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct {
		target, message string
	}{
		{"/api/encode/", "octal permission must be 3 characters, got 0"},
		{"/api/decode/", "symbolic permission must be 9 characters, got 0"},
	} {
		t.Run(tc.target, func(t *testing.T) {
			rr, body := f.do(t, http.MethodGet, tc.target, "")
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "InvalidLength", body["error"])
			assert.Equal(t, tc.message, body["message"])
		})
	}
}

func TestConvert(t *testing.T) {
	f := newFixture(t)

	rr, body := f.do(t, http.MethodPost, "/api/convert", `{"input":" 750 "}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{
		"input":     "750",
		"direction": "encode",
		"octal":     "750",
		"symbolic":  "rwxr-x---",
		"literal":   "0750",
	}, body)

	rr, body = f.do(t, http.MethodPost, "/api/convert", `{"input":"rw-------"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "decode", body["direction"])
	assert.Equal(t, "600", body["octal"])

	rr, body = f.do(t, http.MethodPost, "/api/convert", `{"input":"7777"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "InvalidLength", body["error"])

	rr, body = f.do(t, http.MethodPost, "/api/convert", `nope`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid JSON data", body["error"])
}

func TestNotFound(t *testing.T) {
	f := newFixture(t)
	rr, body := f.do(t, http.MethodGet, "/api/nothing", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Endpoint not found", body["error"])
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	rr, _ := f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	page := rr.Body.String()
	assert.Contains(t, page, "Service Status: RUNNING")
	assert.Contains(t, page, "1h 2m 3s")
	assert.Contains(t, page, "12.5%")
	assert.Contains(t, page, "<td>7</td><td>rwx</td>")

	f.sys.Set(sysinfo.Snapshot{}, errors.New("gone"))
	rr, _ = f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "System Metrics")
}

func TestRequestID(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	f.api.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))

	rr, _ = f.do(t, http.MethodGet, "/api/status", "")
	assert.Len(t, rr.Header().Get(RequestIDHeader), 36)
}

func TestRecoverer(t *testing.T) {
	f := newFixture(t)
	f.api.Handle("GET /panic", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rr, body := f.do(t, http.MethodGet, "/panic", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", body["error"])
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "0h 0m 0s", formatUptime(0))
	assert.Equal(t, "1h 2m 3s", formatUptime(time.Hour+2*time.Minute+3*time.Second+400*time.Millisecond))
	assert.Equal(t, "26h 0m 1s", formatUptime(26*time.Hour+time.Second))
}
