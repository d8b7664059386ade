package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"Burrow_Hole/pkg/logger"
)

const instrumentation = "Burrow_Hole"

var provider *sdktrace.TracerProvider

// Tracer 未初始化时走全局 noop provider
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentation)
}

// Init endpoint 为空时不导出，span 仍可创建
func Init(ctx context.Context, serviceName, endpoint string) error {
	if endpoint == "" {
		logger.Info("tracing disabled, no otlp endpoint")
		return nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)

	provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	logger.Info("tracing initialized", zap.String("endpoint", endpoint))
	return nil
}

func Shutdown(ctx context.Context) {
	if provider == nil {
		return
	}
	if err := provider.Shutdown(ctx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
}
