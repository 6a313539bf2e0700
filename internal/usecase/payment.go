package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/polkiloo/eventmart/internal/adapter/payment"
	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/metrics"
)

// PaymentUseCase gates and executes settlement of a master order. It never
// marks an order paid itself; callers confirm through CheckSettlement.
type PaymentUseCase struct {
	payments payment.Client
	orders   OrderReader
	currency string
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(payments payment.Client, orders OrderReader, currency string, m *metrics.Metrics, logger *slog.Logger) *PaymentUseCase {
	return &PaymentUseCase{payments: payments, orders: orders, currency: currency, metrics: m, logger: logger}
}

// IsPayable reports whether settlement may start for order.
func (u *PaymentUseCase) IsPayable(order *model.MasterOrder) bool {
	return order != nil &&
		order.Status == model.AggregateStatusFullyApproved &&
		order.TotalAmount > 0 &&
		order.Status != model.AggregateStatusPaid
}

// Initiate opens an online payment for order.
func (u *PaymentUseCase) Initiate(ctx context.Context, order *model.MasterOrder) (*model.PaymentIntent, error) {
	if err := u.gate(order, model.PaymentMethodOnline); err != nil {
		return nil, err
	}

	intent, err := u.payments.Initiate(ctx, order.ID, order.TotalAmount, u.currency)
	u.record(model.PaymentMethodOnline, "initiate", err)
	if err != nil {
		return nil, err
	}
	u.logger.Info("online payment initiated",
		slog.String("order_id", order.ID),
		slog.String("gateway_order_ref", intent.GatewayOrderRef))
	return intent, nil
}

// Verify forwards the payment widget's callback. Acceptance means the
// signature checked out, not that the order is settled.
func (u *PaymentUseCase) Verify(ctx context.Context, v model.PaymentVerification) error {
	switch {
	case v.GatewayOrderRef == "":
		return domainErrors.NewValidation("gateway_order_ref", "must not be empty")
	case v.PaymentRef == "":
		return domainErrors.NewValidation("payment_ref", "must not be empty")
	case v.Signature == "":
		return domainErrors.NewValidation("signature", "must not be empty")
	}

	err := u.payments.Verify(ctx, v)
	u.record(model.PaymentMethodOnline, "verify", err)
	return err
}

// ConfirmCOD settles order as cash on delivery.
func (u *PaymentUseCase) ConfirmCOD(ctx context.Context, order *model.MasterOrder) (*model.PaymentIntent, error) {
	if err := u.gate(order, model.PaymentMethodCOD); err != nil {
		return nil, err
	}

	err := u.payments.ConfirmCOD(ctx, order.ID, order.TotalAmount, u.currency)
	u.record(model.PaymentMethodCOD, "confirm", err)
	if err != nil {
		return nil, err
	}
	u.logger.Info("cash on delivery confirmed", slog.String("order_id", order.ID))
	return &model.PaymentIntent{
		MasterOrderID: order.ID,
		Amount:        order.TotalAmount,
		Currency:      u.currency,
		Method:        model.PaymentMethodCOD,
	}, nil
}

// CheckSettlement re-reads the order. Unless it is PAID a
// *SettlementRaceError is returned and the caller should poll again.
func (u *PaymentUseCase) CheckSettlement(ctx context.Context, customerID, orderID string) (*model.MasterOrder, error) {
	order, err := u.orders.Get(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.AggregateStatusPaid {
		return order, &domainErrors.SettlementRaceError{OrderID: orderID, Observed: string(order.Status)}
	}
	return order, nil
}

func (u *PaymentUseCase) gate(order *model.MasterOrder, method model.PaymentMethod) error {
	if u.IsPayable(order) {
		return nil
	}
	u.metrics.Payments.WithLabelValues(string(method), "gate", "rejected").Inc()
	if order == nil {
		return domainErrors.ErrNotPayable
	}
	return fmt.Errorf("order %s is %s with total %d: %w", order.ID, order.Status, order.TotalAmount, domainErrors.ErrNotPayable)
}

func (u *PaymentUseCase) record(method model.PaymentMethod, step string, err error) {
	result := "ok"
	if err != nil {
		result = string(domainErrors.Classify(err))
	}
	u.metrics.Payments.WithLabelValues(string(method), step, result).Inc()
}
