package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/nrjbwj/postforge/internal/config"
)

func preserveGlobals(t *testing.T) func() {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	return func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	}
}

func TestSetupOTel_Disabled(t *testing.T) {
	restore := preserveGlobals(t)
	defer restore()

	prevTP := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false}, "v0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("expected non-nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatalf("disabled setup changed the global provider")
	}
}

func TestSetupOTel_Enabled_SetsGlobals(t *testing.T) {
	restore := preserveGlobals(t)
	defer restore()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: "postforge-test",
		SampleRatio: 1.0,
	}, "v1.0.0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("expected *sdktrace.TracerProvider")
	}

	// Propagator round trip.
	prop := otel.GetTextMapPropagator()
	carrier := propagation.MapCarrier{}
	ctx, span := otel.Tracer("test").Start(context.Background(), "span")
	span.End()
	prop.Inject(ctx, carrier)
	_ = prop.Extract(context.Background(), carrier)
}

func TestSetupOTel_ExporterError(t *testing.T) {
	restore := preserveGlobals(t)
	defer restore()

	orig := newOTLPExporterFn
	defer func() { newOTLPExporterFn = orig }()
	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, errors.New("exporter down")
	}

	prevTP := otel.GetTracerProvider()
	_, err := SetupOTel(context.Background(), config.OTELConfig{
		Enabled: true, Insecure: true, Endpoint: "localhost:4317",
		ServiceName: "svc", SampleRatio: 1.0,
	}, "v0")
	if err == nil {
		t.Fatalf("expected error")
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatalf("provider changed on failure")
	}
}

func TestSetupOTel_ResourceError(t *testing.T) {
	restore := preserveGlobals(t)
	defer restore()

	orig := newServiceResourceFn
	defer func() { newServiceResourceFn = orig }()
	newServiceResourceFn = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		return nil, errors.New("resource build failed")
	}

	prevTP := otel.GetTracerProvider()
	_, err := SetupOTel(context.Background(), config.OTELConfig{
		Enabled: true, Insecure: true, Endpoint: "localhost:4317",
		ServiceName: "svc", SampleRatio: 1.0,
	}, "v0")
	if err == nil {
		t.Fatalf("expected error")
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatalf("provider changed on failure")
	}
}
