package dto

import "time"

// PaymentIntentResponse describes a started settlement.
type PaymentIntentResponse struct {
	OrderID         string `json:"order_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Method          string `json:"method"`
	GatewayOrderRef string `json:"gateway_order_ref,omitempty"`
}

// VerifyPaymentRequest carries the payment widget callback.
type VerifyPaymentRequest struct {
	GatewayOrderRef string `json:"gateway_order_ref"`
	PaymentRef      string `json:"payment_ref"`
	Signature       string `json:"signature"`
}

// SettlementResponse reports settlement tracking for an order.
type SettlementResponse struct {
	OrderID   string     `json:"order_id"`
	State     string     `json:"state"`
	Observed  string     `json:"observed_status,omitempty"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CashOnDeliveryResponse combines the intent and the initial tracking state.
type CashOnDeliveryResponse struct {
	Payment    PaymentIntentResponse `json:"payment"`
	Settlement SettlementResponse    `json:"settlement"`
}
