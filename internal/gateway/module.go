package gateway

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/polkiloo/eventmart/internal/config"
	"github.com/polkiloo/eventmart/internal/metrics"
	"github.com/polkiloo/eventmart/internal/session"
)

// Module wires the shared outbound HTTP client and the gateway.
var Module = fx.Provide(
	NewHTTPClient,
	newGateway,
	func(g *Gateway) Sender { return g },
)

// NewHTTPClient returns the instrumented client used for every service call.
func NewHTTPClient(cfg *config.Config, tp trace.TracerProvider) *http.Client {
	return &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport, otelhttp.WithTracerProvider(tp)),
	}
}

type gatewayParams struct {
	fx.In

	Config  *config.Config
	Client  *http.Client
	Manager *session.Manager
	Renewer Renewer
	Tracer  trace.Tracer
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func newGateway(p gatewayParams) *Gateway {
	return New(p.Client, p.Manager, p.Renewer, p.Tracer, p.Metrics, p.Logger, Options{
		RefreshTimeout: p.Config.RefreshTimeout,
	})
}
