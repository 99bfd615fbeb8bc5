package tracer

import (
	"context"
	"sync"

	"github.com/nikitakapustkin/bankctl/pkg/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	//nolint:gochecknoglobals // Global tracer is intentional for application-wide tracing
	defaultTracer trace.Tracer
	//nolint:gochecknoglobals // See defaultTracer
	initOnce sync.Once
	//nolint:gochecknoglobals // See defaultTracer
	errInit error
)

func InitTracer(serviceName string, cfg otel.Config) error {
	initOnce.Do(func() {
		cfg.ServiceName = serviceName
		t, err := otel.InitTracer(cfg)
		if err != nil {
			errInit = err
			return
		}

		defaultTracer = t
	})

	return errInit
}

// Start begins a span on the configured tracer, falling back to a noop tracer
// when InitTracer has not run. Callers never need to nil-check.
func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if defaultTracer == nil {
		noopTracer := noop.NewTracerProvider().Tracer("noop")
		return noopTracer.Start(ctx, spanName, opts...)
	}

	return defaultTracer.Start(ctx, spanName, opts...)
}
