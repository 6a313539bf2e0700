package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/polkiloo/eventmart/internal/adapter/booking"
	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/metrics"
)

// ItemOutcome reports what happened to one line item.
type ItemOutcome struct {
	Item           model.LineItem
	IdempotencyKey string
	SubOrderID     string
	Status         model.BookingStatus
	Err            error
	Kind           domainErrors.Kind
}

// Succeeded reports whether a sub-order was committed for the item.
func (o ItemOutcome) Succeeded() bool { return o.Err == nil && o.SubOrderID != "" }

// CheckoutResult holds one outcome per submitted line item, in cart order.
type CheckoutResult struct {
	AttemptID     string
	MasterOrderID string
	Outcomes      []ItemOutcome
	Total         int64
}

// Succeeded returns outcomes of committed items.
func (r *CheckoutResult) Succeeded() []ItemOutcome {
	return lo.Filter(r.Outcomes, func(o ItemOutcome, _ int) bool { return o.Succeeded() })
}

// Failed returns outcomes of items that were not committed.
func (r *CheckoutResult) Failed() []ItemOutcome {
	return lo.Filter(r.Outcomes, func(o ItemOutcome, _ int) bool { return !o.Succeeded() })
}

// NeedsAttention is true when some items were committed and some were not.
func (r *CheckoutResult) NeedsAttention() bool {
	failed := len(r.Failed())
	return failed > 0 && failed < len(r.Outcomes)
}

// PartialCompletionError is returned alongside a result that mixes committed
// and failed items. The committed subset stays valid.
type PartialCompletionError struct {
	Result *CheckoutResult
}

func (e *PartialCompletionError) Error() string {
	return fmt.Sprintf("%s: %d of %d items committed to order %s",
		domainErrors.ErrPartialCompletion, len(e.Result.Succeeded()), len(e.Result.Outcomes), e.Result.MasterOrderID)
}

func (e *PartialCompletionError) Is(target error) bool {
	return target == domainErrors.ErrPartialCompletion
}

// CheckoutUseCase turns a cart into bookings grouped under one master order.
type CheckoutUseCase struct {
	bookings booking.Client
	metrics  *metrics.Metrics
	logger   *slog.Logger

	now       func() time.Time
	attemptID func() string
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(bookings booking.Client, m *metrics.Metrics, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		bookings:  bookings,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
		attemptID: uuid.NewString,
	}
}

// IdempotencyKey builds the booking key for item within the attempt started at.
func IdempotencyKey(itemID string, attempt time.Time) string {
	return "booking-" + itemID + "-" + strconv.FormatInt(attempt.UnixNano(), 10)
}

// Submit books every item in cart order. Items are submitted one at a time:
// the first committed item establishes the master order and every later item
// is attached to it. A failed item does not stop the remaining ones.
//
// A non-nil result is returned whenever validation passes. The error is nil
// when every item was committed, a *PartialCompletionError when only some
// were, and ErrCheckoutFailed when none were.
func (u *CheckoutUseCase) Submit(ctx context.Context, cart model.Cart) (*CheckoutResult, error) {
	if err := ValidateCart(cart); err != nil {
		return nil, err
	}
	result := u.run(ctx, cart, cart.Items, "")
	return result, u.finish(result)
}

// Retry resubmits the failed items of previous as a new attempt with fresh
// idempotency keys. Committed items are kept as they were, and retried items
// join the master order previous established, if any.
func (u *CheckoutUseCase) Retry(ctx context.Context, cart model.Cart, previous *CheckoutResult) (*CheckoutResult, error) {
	if previous == nil {
		return nil, domainErrors.NewValidation("previous", "no checkout to retry")
	}
	if err := ValidateCart(cart); err != nil {
		return nil, err
	}

	failed := previous.Failed()
	if len(failed) == 0 {
		return nil, domainErrors.NewValidation("previous", "every item is already committed")
	}

	byID := lo.KeyBy(cart.Items, func(item model.LineItem) string { return item.ID })
	items := make([]model.LineItem, 0, len(failed))
	for _, o := range failed {
		item, ok := byID[o.Item.ID]
		if !ok {
			return nil, domainErrors.NewValidation("items", "failed item "+o.Item.ID+" is not in the cart")
		}
		items = append(items, item)
	}

	retried := u.run(ctx, cart, items, previous.MasterOrderID)
	retriedByID := lo.KeyBy(retried.Outcomes, func(o ItemOutcome) string { return o.Item.ID })

	merged := &CheckoutResult{AttemptID: retried.AttemptID, MasterOrderID: retried.MasterOrderID}
	for _, o := range previous.Outcomes {
		if r, ok := retriedByID[o.Item.ID]; ok {
			o = r
		}
		merged.Outcomes = append(merged.Outcomes, o)
	}
	merged.Total = committedTotal(merged.Outcomes)

	return merged, u.finish(merged)
}

func (u *CheckoutUseCase) run(ctx context.Context, cart model.Cart, items []model.LineItem, masterOrderID string) *CheckoutResult {
	attempt := u.now()
	result := &CheckoutResult{
		AttemptID:     u.attemptID(),
		MasterOrderID: masterOrderID,
		Outcomes:      make([]ItemOutcome, 0, len(items)),
	}
	logger := u.logger.With(slog.String("attempt_id", result.AttemptID))

	for _, item := range items {
		key := IdempotencyKey(item.ID, attempt)
		outcome := ItemOutcome{Item: item, IdempotencyKey: key}

		receipt, err := u.bookings.Create(ctx, model.BookingRequest{
			VendorID:       item.VendorID,
			Product:        item.Product,
			Event:          cart.Event,
			Customer:       cart.Customer,
			Amount:         item.UnitPrice,
			IdempotencyKey: key,
			MasterOrderID:  result.MasterOrderID,
		})
		if err != nil {
			outcome.Err = err
			outcome.Kind = domainErrors.Classify(err)
			u.metrics.CheckoutItems.WithLabelValues("failed").Inc()
			logger.Warn("booking failed",
				slog.String("item_id", item.ID),
				slog.String("vendor_id", item.VendorID),
				slog.String("kind", string(outcome.Kind)),
				slog.String("error", err.Error()))
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		if result.MasterOrderID == "" {
			result.MasterOrderID = receipt.MasterOrderID
		} else if receipt.MasterOrderID != result.MasterOrderID {
			logger.Warn("booking attached to unexpected master order",
				slog.String("item_id", item.ID),
				slog.String("expected", result.MasterOrderID),
				slog.String("got", receipt.MasterOrderID))
		}
		outcome.SubOrderID = receipt.ID
		outcome.Status = receipt.Status
		u.metrics.CheckoutItems.WithLabelValues("committed").Inc()
		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.Total = committedTotal(result.Outcomes)
	return result
}

func (u *CheckoutUseCase) finish(result *CheckoutResult) error {
	committed := len(result.Succeeded())
	switch {
	case committed == len(result.Outcomes):
		u.metrics.CheckoutRuns.WithLabelValues("completed").Inc()
		u.logger.Info("checkout completed",
			slog.String("attempt_id", result.AttemptID),
			slog.String("master_order_id", result.MasterOrderID),
			slog.Int64("total", result.Total))
		return nil
	case committed == 0:
		u.metrics.CheckoutRuns.WithLabelValues("failed").Inc()
		return domainErrors.ErrCheckoutFailed
	default:
		u.metrics.CheckoutRuns.WithLabelValues("partial").Inc()
		return &PartialCompletionError{Result: result}
	}
}

func committedTotal(outcomes []ItemOutcome) int64 {
	return lo.SumBy(outcomes, func(o ItemOutcome) int64 {
		if !o.Succeeded() {
			return 0
		}
		return o.Item.UnitPrice
	})
}
