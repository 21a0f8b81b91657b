// SPDX-License-Identifier: MPL-2.0

// Package telemetry configures OpenTelemetry tracing for the cmdengine host.
package telemetry

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Settings selects the trace exporter.
type Settings struct {
	Endpoint    string `env:"CMDENGINE_OTEL_ENDPOINT"`
	Enabled     bool   `env:"CMDENGINE_OTEL_ENABLED" envDefault:"true"`
	ServiceName string `env:"CMDENGINE_OTEL_SERVICE" envDefault:"cmdengine"`
}

// SettingsFromEnv reads Settings from the environment.
func SettingsFromEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// Setup installs a global tracer provider exporting to s.Endpoint over
// OTLP/HTTP. Tracing is opt-in: with no endpoint, or Enabled false, it
// returns a no-op shutdown and leaves the global provider untouched.
//
// The returned shutdown flushes pending spans and should be deferred.
func Setup(ctx context.Context, s Settings) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !s.Enabled || s.Endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(s.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("create trace exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(s.ServiceName)))
	if err != nil {
		return noop, fmt.Errorf("describe resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}
