package dto

// CheckoutRequest is the cart submitted by the UI.
type CheckoutRequest struct {
	Items    []LineItemRequest `json:"items"`
	Customer CustomerRequest   `json:"customer"`
	Event    EventRequest      `json:"event"`
}

// LineItemRequest is one cart entry.
type LineItemRequest struct {
	ID          string `json:"id"`
	VendorID    string `json:"vendor_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Package     string `json:"package,omitempty"`
	UnitPrice   int64  `json:"unit_price"`
}

type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// EventRequest carries the event date as YYYY-MM-DD.
type EventRequest struct {
	Type       string `json:"type"`
	Date       string `json:"date"`
	GuestCount int    `json:"guest_count"`
	Venue      string `json:"venue,omitempty"`
}

// RetryCheckoutRequest names the attempt whose failed items are resubmitted.
type RetryCheckoutRequest struct {
	AttemptID string `json:"attempt_id"`
}

// CheckoutResponse is the per-item report of a checkout attempt.
type CheckoutResponse struct {
	AttemptID      string                `json:"attempt_id"`
	MasterOrderID  string                `json:"master_order_id,omitempty"`
	Total          int64                 `json:"total"`
	NeedsAttention bool                  `json:"needs_attention"`
	Items          []ItemOutcomeResponse `json:"items"`
}

type ItemOutcomeResponse struct {
	ItemID         string `json:"item_id"`
	VendorID       string `json:"vendor_id"`
	IdempotencyKey string `json:"idempotency_key"`
	SubOrderID     string `json:"sub_order_id,omitempty"`
	Status         string `json:"status,omitempty"`
	Error          string `json:"error,omitempty"`
	Kind           string `json:"kind,omitempty"`
}
