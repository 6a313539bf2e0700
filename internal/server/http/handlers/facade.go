package handlers

import (
	"context"

	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/usecase"
	"github.com/polkiloo/eventmart/internal/worker"
)

// SessionFacade describes sign-in capabilities required by handlers.
type SessionFacade interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context) bool
	CustomerID() (string, bool)
}

// CheckoutFacade submits carts and retries failed items.
type CheckoutFacade interface {
	Checkout(ctx context.Context, cart model.Cart) (*usecase.CheckoutResult, error)
	RetryCheckout(ctx context.Context, attemptID string) (*usecase.CheckoutResult, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Orders(ctx context.Context) ([]model.MasterOrder, error)
	DeleteSubOrder(ctx context.Context, orderID, subOrderID string) (*model.MasterOrder, error)
}

// PaymentFacade starts settlement and reports its progress.
type PaymentFacade interface {
	StartOnlinePayment(ctx context.Context, orderID string) (*model.PaymentIntent, error)
	VerifyOnlinePayment(ctx context.Context, orderID string, v model.PaymentVerification) (worker.Settlement, error)
	PayCashOnDelivery(ctx context.Context, orderID string) (*model.PaymentIntent, worker.Settlement, error)
	SettlementStatus(ctx context.Context, orderID string) (worker.Settlement, error)
}

// MarketplaceFacade aggregates the full set of operations used across handlers.
type MarketplaceFacade interface {
	SessionFacade
	CheckoutFacade
	OrderFacade
	PaymentFacade
}
