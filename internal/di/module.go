package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/eventmart/internal/adapter/authsvc"
	"github.com/polkiloo/eventmart/internal/adapter/booking"
	"github.com/polkiloo/eventmart/internal/adapter/catalog"
	"github.com/polkiloo/eventmart/internal/adapter/orders"
	"github.com/polkiloo/eventmart/internal/adapter/payment"
	"github.com/polkiloo/eventmart/internal/app"
	"github.com/polkiloo/eventmart/internal/config"
	"github.com/polkiloo/eventmart/internal/gateway"
	"github.com/polkiloo/eventmart/internal/logger"
	"github.com/polkiloo/eventmart/internal/metrics"
	"github.com/polkiloo/eventmart/internal/server/http/router"
	"github.com/polkiloo/eventmart/internal/session"
	"github.com/polkiloo/eventmart/internal/storage/postgres"
	"github.com/polkiloo/eventmart/internal/tracing"
	"github.com/polkiloo/eventmart/internal/usecase"
	"github.com/polkiloo/eventmart/internal/worker"
)

// Module assembles the full application graph. opts are appended last so
// callers can fx.Replace or fx.Decorate any component.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		tracing.Module,
		postgres.Module,
		session.Module,
		gateway.Module,
		authsvc.Module,
		booking.Module,
		orders.Module,
		catalog.Module,
		payment.Module,
		usecase.Module,
		worker.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
