// Package tracing bootstraps the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultServiceName = "psychometrician"
	batchTimeout       = 5 * time.Second
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Option applies a configuration option to Init.
type Option func(*settings)

type settings struct {
	serviceName string
	writer      io.Writer
	pretty      bool
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(s *settings) {
		if strings.TrimSpace(name) != "" {
			s.serviceName = name
		}
	}
}

// WithWriter sets where spans are written.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithPrettyPrint indents exported spans.
func WithPrettyPrint(pretty bool) Option {
	return func(s *settings) {
		s.pretty = pretty
	}
}

// Init installs a global tracer provider exporting to stdout when enabled.
// When disabled it installs nothing and the returned shutdown is a no-op, so
// otel.Tracer keeps returning the default no-op tracer.
func Init(_ context.Context, enabled bool, opts ...Option) (ShutdownFunc, error) {
	if !enabled {
		return func(context.Context) error { return nil }, nil
	}

	s := settings{serviceName: defaultServiceName, writer: os.Stdout, pretty: true}
	for _, opt := range opts {
		opt(&s)
	}

	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(s.writer)}
	if s.pretty {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(batchTimeout)),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", s.serviceName),
		)),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
