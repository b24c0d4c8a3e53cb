// Package convert wraps the permission codec with the logging, tracing and
// metrics every transport shares.
package convert

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sambigeara/permcalc/pkg/perm"
)

const (
	DirectionEncode = "encode"
	DirectionDecode = "decode"

	tracerName = "github.com/sambigeara/permcalc/pkg/convert"
	spanPrefix = "perm."
)

// Converter is what the menu and transports depend on.
type Converter interface {
	Encode(ctx context.Context, octal string) (string, error)
	Decode(ctx context.Context, symbolic string) (string, error)
}

type Recorder interface {
	RecordConversion(ctx context.Context, direction string, err error)
}

type Result struct {
	Input     string `json:"input"`
	Direction string `json:"direction"`
	Octal     string `json:"octal"`
	Symbolic  string `json:"symbolic"`
	Literal   string `json:"literal"`
}

type Service struct {
	log    *zap.Logger
	rec    Recorder
	tracer trace.Tracer
}

func New(log *zap.Logger, rec Recorder, tp trace.TracerProvider) *Service {
	return &Service{
		log:    log.Named("convert"),
		rec:    rec,
		tracer: tp.Tracer(tracerName),
	}
}

func (s *Service) Encode(ctx context.Context, octal string) (string, error) {
	res, err := s.run(ctx, octal, func(in string) (perm.Mode, perm.Form, error) {
		m, err := perm.ParseOctal(in)
		return m, perm.FormOctal, err
	})
	return res.Symbolic, err
}

func (s *Service) Decode(ctx context.Context, symbolic string) (string, error) {
	res, err := s.run(ctx, symbolic, func(in string) (perm.Mode, perm.Form, error) {
		m, err := perm.ParseSymbolic(in)
		return m, perm.FormSymbolic, err
	})
	return res.Octal, err
}

// Convert detects the form from the input length and converts to the other.
func (s *Service) Convert(ctx context.Context, input string) (Result, error) {
	return s.run(ctx, input, perm.Parse)
}

// directionOf maps the form of the input to the way it is converted.
func directionOf(f perm.Form) string {
	if f == perm.FormSymbolic {
		return DirectionDecode
	}
	return DirectionEncode
}

// run parses once; the span is renamed after the direction the parsed form
// implies.
func (s *Service) run(ctx context.Context, input string, parse func(string) (perm.Mode, perm.Form, error)) (Result, error) {
	ctx, span := s.tracer.Start(ctx, spanPrefix+"convert", trace.WithAttributes(attribute.String("input", input)))
	defer span.End()

	m, form, err := parse(input)
	direction := directionOf(form)
	span.SetName(spanPrefix + direction)
	span.SetAttributes(attribute.String("direction", direction))

	s.rec.RecordConversion(ctx, direction, err)
	if err != nil {
		kind, _ := perm.KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		s.log.Info("rejected permission",
			zap.String("direction", direction),
			zap.String("input", input),
			zap.Stringer("kind", kind),
			zap.Error(err))
		return Result{}, err
	}

	res := Result{
		Input:     input,
		Direction: direction,
		Octal:     m.Octal(),
		Symbolic:  m.Symbolic(),
		Literal:   m.Literal(),
	}
	span.SetStatus(codes.Ok, "")
	s.log.Debug("converted permission",
		zap.String("direction", direction),
		zap.String("octal", res.Octal),
		zap.String("symbolic", res.Symbolic))
	return res, nil
}
