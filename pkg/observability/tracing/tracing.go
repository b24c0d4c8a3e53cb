package tracing

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// NewProvider returns a tracer provider that writes finished spans to log at
// debug level. Extra options (e.g. a test span processor) are appended.
func NewProvider(log *zap.Logger, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithSyncer(&zapExporter{log: log.Named("trace")}),
	}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}

type zapExporter struct {
	log *zap.Logger
}

func (e *zapExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		if ce := e.log.Check(zap.DebugLevel, s.Name()); ce != nil {
			ce.Write(
				zap.String("traceID", s.SpanContext().TraceID().String()),
				zap.Duration("duration", s.EndTime().Sub(s.StartTime())),
				zap.String("status", s.Status().Code.String()),
				zap.String("description", s.Status().Description),
			)
		}
	}
	return nil
}

func (e *zapExporter) Shutdown(context.Context) error { return nil }
