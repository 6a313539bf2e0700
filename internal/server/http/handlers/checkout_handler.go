package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/server/http/dto"
	"github.com/polkiloo/eventmart/internal/usecase"
)

// CheckoutHandler turns carts into bookings.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Submit handles POST /api/checkout.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed cart payload")
		return
	}
	cart, err := toCart(req)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.facade.Checkout(c.Request.Context(), cart)
	respondCheckout(c, result, err)
}

// Retry handles POST /api/checkout/retry.
func (h *CheckoutHandler) Retry(c *gin.Context) {
	var req dto.RetryCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AttemptID == "" {
		badRequest(c, "attempt_id is required")
		return
	}

	result, err := h.facade.RetryCheckout(c.Request.Context(), req.AttemptID)
	respondCheckout(c, result, err)
}

// respondCheckout reports 200 when every item was committed, 207 when only
// some were and 502 when none were. Other errors carry no report.
func respondCheckout(c *gin.Context, result *usecase.CheckoutResult, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toCheckoutResponse(result))
	case result != nil && errors.Is(err, domainErrors.ErrPartialCompletion):
		c.JSON(http.StatusMultiStatus, toCheckoutResponse(result))
	case result != nil && errors.Is(err, domainErrors.ErrCheckoutFailed):
		c.JSON(http.StatusBadGateway, toCheckoutResponse(result))
	default:
		writeError(c, err)
	}
}

func toCart(req dto.CheckoutRequest) (model.Cart, error) {
	var date time.Time
	if req.Event.Date != "" {
		parsed, err := time.Parse(time.DateOnly, req.Event.Date)
		if err != nil {
			return model.Cart{}, domainErrors.NewValidation("event.date", "must be formatted as YYYY-MM-DD")
		}
		date = parsed
	}

	return model.Cart{
		Items: lo.Map(req.Items, func(item dto.LineItemRequest, _ int) model.LineItem {
			return model.LineItem{
				ID:        item.ID,
				VendorID:  item.VendorID,
				Product:   model.Product{ID: item.ProductID, Name: item.ProductName, Package: item.Package},
				UnitPrice: item.UnitPrice,
			}
		}),
		Customer: model.Customer{
			Name:    req.Customer.Name,
			Email:   req.Customer.Email,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
		},
		Event: model.EventDetails{
			Type:       req.Event.Type,
			Date:       date,
			GuestCount: req.Event.GuestCount,
			Venue:      req.Event.Venue,
		},
	}, nil
}

func toCheckoutResponse(result *usecase.CheckoutResult) dto.CheckoutResponse {
	return dto.CheckoutResponse{
		AttemptID:      result.AttemptID,
		MasterOrderID:  result.MasterOrderID,
		Total:          result.Total,
		NeedsAttention: result.NeedsAttention(),
		Items: lo.Map(result.Outcomes, func(o usecase.ItemOutcome, _ int) dto.ItemOutcomeResponse {
			resp := dto.ItemOutcomeResponse{
				ItemID:         o.Item.ID,
				VendorID:       o.Item.VendorID,
				IdempotencyKey: o.IdempotencyKey,
				SubOrderID:     o.SubOrderID,
				Status:         string(o.Status),
				Kind:           string(o.Kind),
			}
			if o.Err != nil {
				resp.Error = o.Err.Error()
			}
			return resp
		}),
	}
}
