package model

// PaymentMethod selects the settlement path.
type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "ONLINE"
	PaymentMethodCOD    PaymentMethod = "COD"
)

// PaymentIntent describes a settlement started for a master order.
// GatewayOrderRef is set for online payments only.
type PaymentIntent struct {
	MasterOrderID   string
	Amount          int64
	Currency        string
	Method          PaymentMethod
	GatewayOrderRef string
}

// PaymentVerification carries the payment widget's success callback values.
type PaymentVerification struct {
	GatewayOrderRef string
	PaymentRef      string
	Signature       string
}
