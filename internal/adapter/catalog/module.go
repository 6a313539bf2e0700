package catalog

import (
	"go.uber.org/fx"

	"github.com/polkiloo/eventmart/internal/config"
	"github.com/polkiloo/eventmart/internal/gateway"
)

// Module exposes the catalog client to the fx graph.
var Module = fx.Provide(newClient)

func newClient(cfg *config.Config, sender gateway.Sender) (Client, error) {
	return NewHTTPClient(cfg.CatalogServiceURL, sender)
}
