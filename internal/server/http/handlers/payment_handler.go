package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/server/http/dto"
	"github.com/polkiloo/eventmart/internal/worker"
)

// PaymentHandler starts settlement of master orders.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// StartOnline handles POST /api/orders/:order_id/payments/online.
func (h *PaymentHandler) StartOnline(c *gin.Context) {
	intent, err := h.facade.StartOnlinePayment(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toIntentResponse(intent))
}

// VerifyOnline handles POST /api/orders/:order_id/payments/online/verify.
func (h *PaymentHandler) VerifyOnline(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed verification payload")
		return
	}

	settlement, err := h.facade.VerifyOnlinePayment(c.Request.Context(), c.Param("order_id"), model.PaymentVerification{
		GatewayOrderRef: req.GatewayOrderRef,
		PaymentRef:      req.PaymentRef,
		Signature:       req.Signature,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, toSettlementResponse(settlement))
}

// CashOnDelivery handles POST /api/orders/:order_id/payments/cod.
func (h *PaymentHandler) CashOnDelivery(c *gin.Context) {
	intent, settlement, err := h.facade.PayCashOnDelivery(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.CashOnDeliveryResponse{
		Payment:    toIntentResponse(intent),
		Settlement: toSettlementResponse(settlement),
	})
}

// Settlement handles GET /api/orders/:order_id/settlement.
func (h *PaymentHandler) Settlement(c *gin.Context) {
	settlement, err := h.facade.SettlementStatus(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettlementResponse(settlement))
}

func toIntentResponse(intent *model.PaymentIntent) dto.PaymentIntentResponse {
	return dto.PaymentIntentResponse{
		OrderID:         intent.MasterOrderID,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		Method:          string(intent.Method),
		GatewayOrderRef: intent.GatewayOrderRef,
	}
}

func toSettlementResponse(s worker.Settlement) dto.SettlementResponse {
	resp := dto.SettlementResponse{
		OrderID:  s.OrderID,
		State:    string(s.State),
		Observed: string(s.Observed),
		Error:    s.Error,
	}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
