package tracer

import (
	"context"
	"time"

	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// InitTracer installs the global tracer provider. Without an endpoint, or when the
// collector is unreachable, spans are recorded by a provider with no exporter.
func InitTracer(serviceName, otlpEndpoint string, appLogger *logger.Logger) *sdktrace.TracerProvider {
	if otlpEndpoint == "" {
		appLogger.Info("OpenTelemetry tracing is disabled: OTEL_EXPORTER_OTLP_ENDPOINT is not set.")
		return sdktrace.NewTracerProvider()
	}

	appLogger.Info("Initializing OpenTelemetry Tracer",
		zap.String("service_name", serviceName),
		zap.String("otlp_endpoint", otlpEndpoint),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(otlpEndpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		appLogger.Error("Failed to create OTLP gRPC client", zap.Error(err), zap.String("endpoint", otlpEndpoint))
		return sdktrace.NewTracerProvider()
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		appLogger.Error("Failed to create OTLP trace exporter", zap.Error(err))
		conn.Close()
		return sdktrace.NewTracerProvider()
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		appLogger.Error("Failed to create OpenTelemetry resource", zap.Error(err))
		_ = traceExporter.Shutdown(ctx)
		conn.Close()
		return sdktrace.NewTracerProvider()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	appLogger.Info("OpenTelemetry Tracer initialized", zap.String("service_name", serviceName))
	return tp
}
