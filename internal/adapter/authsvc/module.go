package authsvc

import (
	"log/slog"
	"net/http"

	"go.uber.org/fx"

	"github.com/polkiloo/eventmart/internal/config"
	"github.com/polkiloo/eventmart/internal/gateway"
)

// Module exposes the auth client and registers it as the gateway renewer.
var Module = fx.Provide(
	newClient,
	func(c *HTTPClient) Client { return c },
	func(c *HTTPClient) gateway.Renewer { return c },
)

type clientParams struct {
	fx.In

	Config     *config.Config
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func newClient(p clientParams) (*HTTPClient, error) {
	return NewHTTPClient(p.Config.AuthServiceURL, p.HTTPClient, p.Logger)
}
