package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/usecase"
	"github.com/polkiloo/eventmart/internal/worker"
)

// SettlementTracker is the subset of the tracker the facade drives.
type SettlementTracker interface {
	Track(customerID, orderID string) error
	Status(orderID string) (worker.Settlement, bool)
	Reset()
}

type checkoutAttempt struct {
	cart   model.Cart
	result *usecase.CheckoutResult
}

// MarketplaceFacade is the single entry point used by the HTTP API. Every
// call except Login acts on behalf of the active session.
type MarketplaceFacade struct {
	sessions *usecase.SessionUseCase
	checkout *usecase.CheckoutUseCase
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
	tracker  SettlementTracker
	logger   *slog.Logger

	mu       sync.Mutex
	attempts map[string]checkoutAttempt
}

// NewMarketplaceFacade constructs MarketplaceFacade.
func NewMarketplaceFacade(sessions *usecase.SessionUseCase, checkout *usecase.CheckoutUseCase, orders *usecase.OrderUseCase, payments *usecase.PaymentUseCase, tracker SettlementTracker, logger *slog.Logger) *MarketplaceFacade {
	return &MarketplaceFacade{
		sessions: sessions,
		checkout: checkout,
		orders:   orders,
		payments: payments,
		tracker:  tracker,
		logger:   logger,
		attempts: make(map[string]checkoutAttempt),
	}
}

func (f *MarketplaceFacade) Login(ctx context.Context, email, password string) (string, error) {
	customerID, err := f.sessions.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	f.ResetSessionState()
	return customerID, nil
}

func (f *MarketplaceFacade) Logout(ctx context.Context) bool {
	return f.sessions.Logout(ctx)
}

func (f *MarketplaceFacade) CustomerID() (string, bool) {
	return f.sessions.CustomerID()
}

// Checkout submits cart for the signed-in customer. The result is kept so
// that its failed items can be retried by attempt id.
func (f *MarketplaceFacade) Checkout(ctx context.Context, cart model.Cart) (*usecase.CheckoutResult, error) {
	customerID, err := f.customer()
	if err != nil {
		return nil, err
	}
	cart.Customer.ID = customerID

	result, err := f.checkout.Submit(ctx, cart)
	f.remember(cart, result)
	return result, err
}

// RetryCheckout resubmits the failed items of a previous attempt.
func (f *MarketplaceFacade) RetryCheckout(ctx context.Context, attemptID string) (*usecase.CheckoutResult, error) {
	if _, err := f.customer(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	previous, ok := f.attempts[attemptID]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("checkout attempt %s: %w", attemptID, domainErrors.ErrNotFound)
	}

	result, err := f.checkout.Retry(ctx, previous.cart, previous.result)
	f.remember(previous.cart, result)
	return result, err
}

func (f *MarketplaceFacade) Orders(ctx context.Context) ([]model.MasterOrder, error) {
	customerID, err := f.customer()
	if err != nil {
		return nil, err
	}
	return f.orders.List(ctx, customerID)
}

func (f *MarketplaceFacade) DeleteSubOrder(ctx context.Context, orderID, subOrderID string) (*model.MasterOrder, error) {
	customerID, err := f.customer()
	if err != nil {
		return nil, err
	}
	return f.orders.DeleteSubOrder(ctx, customerID, orderID, subOrderID)
}

func (f *MarketplaceFacade) StartOnlinePayment(ctx context.Context, orderID string) (*model.PaymentIntent, error) {
	order, err := f.order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return f.payments.Initiate(ctx, order)
}

// VerifyOnlinePayment forwards the gateway callback and starts tracking
// settlement of orderID.
func (f *MarketplaceFacade) VerifyOnlinePayment(ctx context.Context, orderID string, v model.PaymentVerification) (worker.Settlement, error) {
	customerID, err := f.customer()
	if err != nil {
		return worker.Settlement{}, err
	}
	if err := f.payments.Verify(ctx, v); err != nil {
		return worker.Settlement{}, err
	}
	return f.trackAccepted(customerID, orderID), nil
}

// PayCashOnDelivery confirms cash on delivery and starts tracking settlement.
func (f *MarketplaceFacade) PayCashOnDelivery(ctx context.Context, orderID string) (*model.PaymentIntent, worker.Settlement, error) {
	order, err := f.order(ctx, orderID)
	if err != nil {
		return nil, worker.Settlement{}, err
	}
	intent, err := f.payments.ConfirmCOD(ctx, order)
	if err != nil {
		return nil, worker.Settlement{}, err
	}
	return intent, f.trackAccepted(order.CustomerID, orderID), nil
}

// SettlementStatus reports tracking state for orderID. An order that is not
// tracked is checked once and, if not yet PAID, tracked from then on.
func (f *MarketplaceFacade) SettlementStatus(ctx context.Context, orderID string) (worker.Settlement, error) {
	customerID, err := f.customer()
	if err != nil {
		return worker.Settlement{}, err
	}
	if s, ok := f.tracker.Status(orderID); ok {
		return s, nil
	}

	order, err := f.payments.CheckSettlement(ctx, customerID, orderID)
	var race *domainErrors.SettlementRaceError
	switch {
	case err == nil:
		return worker.Settlement{OrderID: orderID, State: worker.SettlementSettled, Observed: order.Status}, nil
	case errors.As(err, &race):
		return f.track(customerID, orderID)
	default:
		return worker.Settlement{}, err
	}
}

// ResetSessionState drops everything learned during the current session.
func (f *MarketplaceFacade) ResetSessionState() {
	f.orders.ResetCaches()
	f.tracker.Reset()

	f.mu.Lock()
	f.attempts = make(map[string]checkoutAttempt)
	f.mu.Unlock()
}

func (f *MarketplaceFacade) customer() (string, error) {
	customerID, ok := f.sessions.CustomerID()
	if !ok {
		return "", &domainErrors.AuthError{Reason: "no active session"}
	}
	return customerID, nil
}

func (f *MarketplaceFacade) order(ctx context.Context, orderID string) (*model.MasterOrder, error) {
	customerID, err := f.customer()
	if err != nil {
		return nil, err
	}
	order, err := f.orders.Get(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID == "" {
		order.CustomerID = customerID
	}
	return order, nil
}

func (f *MarketplaceFacade) track(customerID, orderID string) (worker.Settlement, error) {
	if err := f.tracker.Track(customerID, orderID); err != nil {
		return worker.Settlement{}, err
	}
	s, _ := f.tracker.Status(orderID)
	return s, nil
}

// trackAccepted starts tracking after the backend has accepted a payment. A
// tracking failure must not hide the accepted payment from the caller, so it
// is reported as an untracked settlement instead of an error.
func (f *MarketplaceFacade) trackAccepted(customerID, orderID string) worker.Settlement {
	s, err := f.track(customerID, orderID)
	if err == nil {
		return s
	}
	f.logger.Warn("settlement tracking unavailable",
		slog.String("order_id", orderID),
		slog.String("error", err.Error()),
	)
	return worker.Settlement{
		OrderID:   orderID,
		State:     worker.SettlementUntracked,
		Error:     err.Error(),
		UpdatedAt: time.Now(),
	}
}

func (f *MarketplaceFacade) remember(cart model.Cart, result *usecase.CheckoutResult) {
	if result == nil || len(result.Failed()) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[result.AttemptID] = checkoutAttempt{cart: cart, result: result}
}
