// pkg/middleware/tracing.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"

	"tenantgate/pkg/config"
)

const serviceName = "tenantgate"

var (
	traceOnce     sync.Once
	instrumented  bool
	traceProvider *trace.TracerProvider
)

// Tracing installs an OTLP exporter the first time it is called with an
// endpoint configured. Without one it is a pass-through.
func Tracing(cfg config.Config, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	traceOnce.Do(func() {
		if cfg.OTLPEndpoint == "" {
			return
		}
		opts := []otlptracehttp.Option{}
		if strings.HasPrefix(strings.ToLower(cfg.OTLPEndpoint), "http://") {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(context.Background(), opts...)
		if err != nil {
			log.Warnw("tracing: exporter init failed, instrumentation disabled", "err", err)
			return
		}
		res, err := resource.New(context.Background(), resource.WithAttributes(semconv.ServiceName(serviceName)))
		if err != nil {
			log.Warnw("tracing: resource init failed", "err", err)
			return
		}
		traceProvider = trace.NewTracerProvider(trace.WithBatcher(exp), trace.WithResource(res))
		otel.SetTracerProvider(traceProvider)
		instrumented = true
	})
	if !instrumented {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler { return otelhttp.NewHandler(next, "http") }
}

// ShutdownTracing flushes pending spans.
func ShutdownTracing(ctx context.Context) error {
	if traceProvider == nil {
		return nil
	}
	return traceProvider.Shutdown(ctx)
}
