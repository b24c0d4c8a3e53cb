package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sambigeara/permcalc/pkg/observability/metrics"
	"github.com/sambigeara/permcalc/pkg/perm"
	"github.com/sambigeara/permcalc/pkg/sysinfo"
)

const maxBodyBytes = 1 << 20

type healthResponse struct {
	Status        string   `json:"status"`
	Timestamp     string   `json:"timestamp"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	Version       string   `json:"version,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        sysinfo.StatusHealthy,
		Timestamp:     a.timestamp(),
		UptimeSeconds: seconds(a.uptime()),
		Version:       a.info.Version,
	}

	snap, err := a.system.Collect(r.Context())
	if err != nil {
		a.log.Error("Health check failed", zap.Error(err))
		a.writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:    sysinfo.StatusUnhealthy,
			Timestamp: resp.Timestamp,
			Error:     err.Error(),
		})
		return
	}

	h := sysinfo.Evaluate(snap, a.thresholds)
	resp.Status, resp.Warnings = h.Status, h.Warnings

	code := http.StatusOK
	if !h.OK() {
		code = http.StatusServiceUnavailable
	}
	a.writeJSON(w, code, resp)
}

type statusResponse struct {
	Application   string  `json:"application"`
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Environment   string  `json:"environment"`
	Version       string  `json:"version"`
}

func (a *API) status(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, statusResponse{
		Application:   a.info.Application,
		Status:        "running",
		Timestamp:     a.timestamp(),
		UptimeSeconds: seconds(a.uptime()),
		Environment:   a.info.Environment,
		Version:       a.info.Version,
	})
}

// MetricsResponse is the body of GET /api/metrics.
type MetricsResponse struct {
	Timestamp         string                    `json:"timestamp"`
	CPU               sysinfo.CPU               `json:"cpu"`
	Memory            sysinfo.Memory            `json:"memory"`
	Disk              sysinfo.Disk              `json:"disk"`
	HostUptimeSeconds uint64                    `json:"host_uptime_seconds"`
	UptimeSeconds     float64                   `json:"uptime_seconds"`
	Conversions       []metrics.ConversionCount `json:"conversions"`
}

func (a *API) systemMetrics(w http.ResponseWriter, r *http.Request) {
	snap, err := a.system.Collect(r.Context())
	if err != nil {
		a.log.Error("Error getting metrics", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "Failed to get metrics")
		return
	}

	counts, err := a.counters.Snapshot(r.Context())
	if err != nil {
		a.log.Error("Error collecting conversion counters", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "Failed to get metrics")
		return
	}

	if counts == nil {
		counts = []metrics.ConversionCount{}
	}

	a.writeJSON(w, http.StatusOK, MetricsResponse{
		Timestamp:         a.timestamp(),
		CPU:               snap.CPU,
		Memory:            snap.Memory,
		Disk:              snap.Disk,
		HostUptimeSeconds: snap.HostUptimeSeconds,
		UptimeSeconds:     seconds(a.uptime()),
		Conversions:       counts,
	})
}

type echoResponse struct {
	Echo      any               `json:"echo"`
	Timestamp string            `json:"timestamp"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
}

func (a *API) echo(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid JSON data")
		return
	}

	var body any = map[string]any{}
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			a.writeError(w, http.StatusBadRequest, "Invalid JSON data")
			return
		}
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		headers[k] = strings.Join(v, ", ")
	}

	a.writeJSON(w, http.StatusOK, echoResponse{
		Echo:      body,
		Timestamp: a.timestamp(),
		Method:    r.Method,
		Headers:   headers,
	})
}

type codecError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *API) encode(w http.ResponseWriter, r *http.Request) {
	octal := r.PathValue("octal")
	symbolic, err := a.conv.Encode(r.Context(), octal)
	if err != nil {
		a.writeCodecError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"octal": octal, "symbolic": symbolic})
}

func (a *API) decode(w http.ResponseWriter, r *http.Request) {
	symbolic := r.PathValue("symbolic")
	octal, err := a.conv.Decode(r.Context(), symbolic)
	if err != nil {
		a.writeCodecError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"symbolic": symbolic, "octal": octal})
}

type convertRequest struct {
	Input string `json:"input"`
}

func (a *API) convertAny(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid JSON data")
		return
	}

	res, err := a.conv.Convert(r.Context(), strings.TrimSpace(req.Input))
	if err != nil {
		a.writeCodecError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, res)
}

func (a *API) writeCodecError(w http.ResponseWriter, err error) {
	kind, ok := perm.KindOf(err)
	if !ok {
		a.log.Error("conversion failed", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	a.writeJSON(w, http.StatusBadRequest, codecError{Error: kind.String(), Message: err.Error()})
}

func (a *API) notFound(w http.ResponseWriter, _ *http.Request) {
	a.writeError(w, http.StatusNotFound, "Endpoint not found")
}

func seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// formatUptime renders d as "1h 2m 3s".
func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
