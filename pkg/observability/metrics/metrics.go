package metrics

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/sambigeara/permcalc/pkg/perm"
)

const (
	meterName       = "github.com/sambigeara/permcalc"
	conversionsName = "permcalc.conversions"

	attrDirection = "direction"
	attrOutcome   = "outcome"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type ConversionCount struct {
	Direction string `json:"direction"`
	Outcome   string `json:"outcome"`
	Count     int64  `json:"count"`
}

// Recorder counts conversions in-process. Collection is pull-based through a
// manual reader so the HTTP API can report totals without an exporter.
type Recorder struct {
	reader      *sdkmetric.ManualReader
	provider    *sdkmetric.MeterProvider
	conversions metric.Int64Counter
}

func NewRecorder() (*Recorder, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	counter, err := provider.Meter(meterName).Int64Counter(
		conversionsName,
		metric.WithDescription("Permission conversions by direction and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create conversions counter: %w", err)
	}

	return &Recorder{reader: reader, provider: provider, conversions: counter}, nil
}

func (r *Recorder) RecordConversion(ctx context.Context, direction string, err error) {
	r.conversions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrDirection, direction),
		attribute.String(attrOutcome, outcomeOf(err)),
	))
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if k, ok := perm.KindOf(err); ok {
		return k.String()
	}
	return OutcomeError
}

// Snapshot returns the current totals sorted by direction, then outcome.
func (r *Recorder) Snapshot(ctx context.Context) ([]ConversionCount, error) {
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	var out []ConversionCount
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != conversionsName {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				direction, _ := dp.Attributes.Value(attrDirection)
				outcome, _ := dp.Attributes.Value(attrOutcome)
				out = append(out, ConversionCount{
					Direction: direction.AsString(),
					Outcome:   outcome.AsString(),
					Count:     dp.Value,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Direction != out[j].Direction {
			return out[i].Direction < out[j].Direction
		}
		return out[i].Outcome < out[j].Outcome
	})
	return out, nil
}

func (r *Recorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}
