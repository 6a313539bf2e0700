package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/eventmart/internal/app"
	"github.com/polkiloo/eventmart/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(
	Setup,
	func(f *app.MarketplaceFacade) handlers.MarketplaceFacade { return f },
)
