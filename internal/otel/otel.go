package otel

import (
	"context"
	"sync"

	"github.com/hanpama/gqlmodel/internal/eventbus"
	"github.com/hanpama/gqlmodel/internal/events"
	"github.com/hanpama/gqlmodel/internal/runid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := Register(otel.Tracer("gqlmodel"))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register turns run events on the global bus into spans of tracer.
func Register(tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register()
}

type subscriber struct {
	tracer   trace.Tracer
	runSpans sync.Map // run id -> trace.Span
}

func (s *subscriber) register() func() {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.RunStart) {
			rid, _ := runid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "gqlmodel.run")
			span.SetAttributes(
				attribute.String("gqlmodel.run.id", rid),
				attribute.String("gqlmodel.unit", e.Unit),
				attribute.Int("gqlmodel.operations", e.Operations),
				attribute.Int("gqlmodel.fragments", e.Fragments),
			)
			s.runSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.Warning) {
			rid, _ := runid.FromContext(ctx)
			if v, ok := s.runSpans.Load(rid); ok {
				v.(trace.Span).AddEvent("warning", trace.WithAttributes(
					attribute.String("message", e.Message),
				))
			}
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.RunFinish) {
			rid, _ := runid.FromContext(ctx)
			v, ok := s.runSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(
				attribute.Int("gqlmodel.classes", e.Classes),
				attribute.Int("gqlmodel.warnings", e.Warnings),
			)
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
