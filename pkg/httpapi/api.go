package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sambigeara/permcalc/pkg/convert"
	"github.com/sambigeara/permcalc/pkg/observability/metrics"
	"github.com/sambigeara/permcalc/pkg/sysinfo"
)

const (
	DefaultApplication = "permcalc"
	DefaultVersion     = "1.0.0"
)

type Converter interface {
	convert.Converter
	Convert(ctx context.Context, input string) (convert.Result, error)
}

type ConversionCounter interface {
	Snapshot(ctx context.Context) ([]metrics.ConversionCount, error)
}

type Info struct {
	Application string
	Version     string
	Environment string
}

type Options struct {
	Log        *zap.Logger
	Converter  Converter
	System     sysinfo.Collector
	Counters   ConversionCounter
	Thresholds sysinfo.Thresholds
	Info       Info
	Started    time.Time
	Now        func() time.Time
}

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

type API struct {
	log        *zap.Logger
	conv       Converter
	system     sysinfo.Collector
	counters   ConversionCounter
	thresholds sysinfo.Thresholds
	info       Info
	started    time.Time
	now        func() time.Time

	mux         *http.ServeMux
	middlewares []Middleware
}

func New(opts Options) *API {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Started.IsZero() {
		opts.Started = opts.Now()
	}
	if opts.Info.Application == "" {
		opts.Info.Application = DefaultApplication
	}
	if opts.Info.Version == "" {
		opts.Info.Version = DefaultVersion
	}

	a := &API{
		log:        opts.Log.Named("http"),
		conv:       opts.Converter,
		system:     opts.System,
		counters:   opts.Counters,
		thresholds: opts.Thresholds,
		info:       opts.Info,
		started:    opts.Started,
		now:        opts.Now,
		mux:        http.NewServeMux(),
	}
	a.Use(a.accessLog, requestID, a.recoverer)
	a.routes()
	return a
}

func (a *API) routes() {
	a.mux.HandleFunc("GET /{$}", a.dashboard)
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /api/status", a.status)
	a.mux.HandleFunc("GET /api/metrics", a.systemMetrics)
	a.mux.HandleFunc("POST /api/echo", a.echo)
	a.mux.HandleFunc("GET /api/encode/{octal}", a.encode)
	a.mux.HandleFunc("GET /api/decode/{symbolic}", a.decode)
	// An empty segment is a zero-length permission, not a missing route.
	a.mux.HandleFunc("GET /api/encode/{$}", a.encode)
	a.mux.HandleFunc("GET /api/decode/{$}", a.decode)
	a.mux.HandleFunc("POST /api/convert", a.convertAny)
	a.mux.HandleFunc("/", a.notFound)
}

// Use appends middleware; the first added is the outermost.
func (a *API) Use(mw ...Middleware) {
	a.middlewares = append(a.middlewares, mw...)
}

// Handle mounts an extra handler, e.g. the connect service.
func (a *API) Handle(pattern string, h http.Handler) {
	a.mux.Handle(pattern, h)
}

func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	return h
}

func (a *API) uptime() time.Duration { return a.now().Sub(a.started) }

func (a *API) timestamp() string { return a.now().UTC().Format(time.RFC3339) }

func (a *API) writeJSON(w http.ResponseWriter, code int, body any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		a.log.Error("JSON marshal failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		a.log.Debug("write response failed", zap.Error(err))
	}
}

func (a *API) writeError(w http.ResponseWriter, code int, msg string) {
	a.writeJSON(w, code, map[string]string{"error": msg})
}
