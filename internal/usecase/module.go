package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/eventmart/internal/adapter/booking"
	"github.com/polkiloo/eventmart/internal/adapter/catalog"
	"github.com/polkiloo/eventmart/internal/adapter/orders"
	"github.com/polkiloo/eventmart/internal/adapter/payment"
	"github.com/polkiloo/eventmart/internal/config"
	"github.com/polkiloo/eventmart/internal/metrics"
)

// Module provides the marketplace use cases to the fx container.
var Module = fx.Provide(
	NewSessionUseCase,
	NewCheckoutUseCase,
	newOrderUseCase,
	func(u *OrderUseCase) OrderReader { return u },
	newPaymentUseCase,
)

type orderParams struct {
	fx.In

	Config   *config.Config
	Orders   orders.Client
	Bookings booking.Client
	Catalog  catalog.Client
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Orders, p.Bookings, p.Catalog, p.Metrics, p.Logger, p.Config.VendorLookupConcurrency)
}

type paymentParams struct {
	fx.In

	Config   *config.Config
	Payments payment.Client
	Orders   OrderReader
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func newPaymentUseCase(p paymentParams) *PaymentUseCase {
	return NewPaymentUseCase(p.Payments, p.Orders, p.Config.Currency, p.Metrics, p.Logger)
}
