package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/polkiloo/eventmart/internal/config"
)

// Module provides the tracer provider and a tracer for the client core.
var Module = fx.Options(
	fx.Provide(newTracerProvider),
	fx.Provide(func(tp trace.TracerProvider) trace.Tracer { return tp.Tracer(ServiceName) }),
)

func newTracerProvider(lc fx.Lifecycle, cfg *config.Config) trace.TracerProvider {
	tp := NewProvider(cfg.TraceSampleRatio)
	Install(tp)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return Shutdown(ctx, tp) },
	})
	return tp
}
