package usecase

import (
	"io"
	"log/slog"
	"time"

	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/metrics"
	"github.com/polkiloo/eventmart/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleCart() model.Cart {
	return model.Cart{
		Items: []model.LineItem{
			{ID: "item-a", VendorID: "vendor-a", Product: model.Product{ID: "p-a", Name: "Decor"}, UnitPrice: 599},
			{ID: "item-b", VendorID: "vendor-b", Product: model.Product{ID: "p-b", Name: "Catering"}, UnitPrice: 1299},
			{ID: "item-c", VendorID: "vendor-c", Product: model.Product{ID: "p-c", Name: "Band"}, UnitPrice: 2000},
		},
		Customer: model.Customer{ID: "cust-1", Name: "Ana", Email: "ana@example.com", Phone: "+15550100"},
		Event:    model.EventDetails{Type: "wedding", Date: time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC), GuestCount: 150},
	}
}

func newCheckout(market *test.Marketplace, at time.Time) *CheckoutUseCase {
	uc := NewCheckoutUseCase(market, metrics.NewNop(), testLogger())
	uc.now = func() time.Time { return at }
	return uc
}

func newOrders(market *test.Marketplace) *OrderUseCase {
	return NewOrderUseCase(market, market, market, metrics.NewNop(), testLogger(), 2)
}
