// Package stubs holds HTTP-facing facade doubles. They live apart from the
// marketplace fake because they depend on the use case package.
package stubs

import (
	"context"

	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/usecase"
	"github.com/polkiloo/eventmart/internal/worker"
)

// SessionSourceStub reports a fixed identity. An empty ID means signed out.
type SessionSourceStub struct {
	ID string
}

// CustomerID implements the session source.
func (s SessionSourceStub) CustomerID() (string, bool) {
	return s.ID, s.ID != ""
}

// MarketplaceFacadeStub provides controllable behaviour for every endpoint.
// Unset functions return a successful default.
type MarketplaceFacadeStub struct {
	SessionSourceStub

	LoginFn        func(context.Context, string, string) (string, error)
	LogoutFn       func(context.Context) bool
	CheckoutFn     func(context.Context, model.Cart) (*usecase.CheckoutResult, error)
	RetryFn        func(context.Context, string) (*usecase.CheckoutResult, error)
	OrdersFn       func(context.Context) ([]model.MasterOrder, error)
	DeleteFn       func(context.Context, string, string) (*model.MasterOrder, error)
	StartOnlineFn  func(context.Context, string) (*model.PaymentIntent, error)
	VerifyOnlineFn func(context.Context, string, model.PaymentVerification) (worker.Settlement, error)
	CashFn         func(context.Context, string) (*model.PaymentIntent, worker.Settlement, error)
	SettlementFn   func(context.Context, string) (worker.Settlement, error)
}

// Login delegates to LoginFn or signs in as the stub identity.
func (s MarketplaceFacadeStub) Login(ctx context.Context, email, password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, email, password)
	}
	return "cust-1", nil
}

// Logout delegates to LogoutFn.
func (s MarketplaceFacadeStub) Logout(ctx context.Context) bool {
	if s.LogoutFn != nil {
		return s.LogoutFn(ctx)
	}
	return s.ID != ""
}

// Checkout delegates to CheckoutFn or commits every item.
func (s MarketplaceFacadeStub) Checkout(ctx context.Context, cart model.Cart) (*usecase.CheckoutResult, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, cart)
	}
	result := &usecase.CheckoutResult{AttemptID: "attempt-1", MasterOrderID: "order-1", Total: cart.Total()}
	for _, item := range cart.Items {
		result.Outcomes = append(result.Outcomes, usecase.ItemOutcome{
			Item:       item,
			SubOrderID: "sub-" + item.ID,
			Status:     model.BookingStatusAwaitingApproval,
		})
	}
	return result, nil
}

// RetryCheckout delegates to RetryFn.
func (s MarketplaceFacadeStub) RetryCheckout(ctx context.Context, attemptID string) (*usecase.CheckoutResult, error) {
	if s.RetryFn != nil {
		return s.RetryFn(ctx, attemptID)
	}
	return &usecase.CheckoutResult{AttemptID: attemptID + "-retry", MasterOrderID: "order-1"}, nil
}

// Orders delegates to OrdersFn or returns no orders.
func (s MarketplaceFacadeStub) Orders(ctx context.Context) ([]model.MasterOrder, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx)
	}
	return nil, nil
}

// DeleteSubOrder delegates to DeleteFn or reports the order as cancelled.
func (s MarketplaceFacadeStub) DeleteSubOrder(ctx context.Context, orderID, subOrderID string) (*model.MasterOrder, error) {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, orderID, subOrderID)
	}
	return nil, nil
}

// StartOnlinePayment delegates to StartOnlineFn.
func (s MarketplaceFacadeStub) StartOnlinePayment(ctx context.Context, orderID string) (*model.PaymentIntent, error) {
	if s.StartOnlineFn != nil {
		return s.StartOnlineFn(ctx, orderID)
	}
	return &model.PaymentIntent{MasterOrderID: orderID, Amount: 100, Currency: "INR", Method: model.PaymentMethodOnline, GatewayOrderRef: "gw-" + orderID}, nil
}

// VerifyOnlinePayment delegates to VerifyOnlineFn.
func (s MarketplaceFacadeStub) VerifyOnlinePayment(ctx context.Context, orderID string, v model.PaymentVerification) (worker.Settlement, error) {
	if s.VerifyOnlineFn != nil {
		return s.VerifyOnlineFn(ctx, orderID, v)
	}
	return worker.Settlement{OrderID: orderID, State: worker.SettlementPending}, nil
}

// PayCashOnDelivery delegates to CashFn.
func (s MarketplaceFacadeStub) PayCashOnDelivery(ctx context.Context, orderID string) (*model.PaymentIntent, worker.Settlement, error) {
	if s.CashFn != nil {
		return s.CashFn(ctx, orderID)
	}
	return &model.PaymentIntent{MasterOrderID: orderID, Amount: 100, Currency: "INR", Method: model.PaymentMethodCOD},
		worker.Settlement{OrderID: orderID, State: worker.SettlementPending}, nil
}

// SettlementStatus delegates to SettlementFn.
func (s MarketplaceFacadeStub) SettlementStatus(ctx context.Context, orderID string) (worker.Settlement, error) {
	if s.SettlementFn != nil {
		return s.SettlementFn(ctx, orderID)
	}
	return worker.Settlement{OrderID: orderID, State: worker.SettlementSettled, Observed: model.AggregateStatusPaid}, nil
}
