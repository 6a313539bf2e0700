package dto

// LoginRequest describes the customer credentials payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse reports the signed-in customer.
type SessionResponse struct {
	CustomerID string `json:"customer_id"`
}
