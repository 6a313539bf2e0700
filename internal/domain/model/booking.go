package model

// BookingStatus is the per-vendor approval state of a sub-order.
type BookingStatus string

const (
	BookingStatusAwaitingApproval BookingStatus = "AWAITING_APPROVAL"
	BookingStatusApproved         BookingStatus = "APPROVED"
	BookingStatusRejected         BookingStatus = "REJECTED"
)

// Deletable reports whether the customer may still remove a sub-order in this state.
func (s BookingStatus) Deletable() bool {
	return s == BookingStatusAwaitingApproval || s == BookingStatusRejected
}

// BookingRequest is the payload submitted for one line item.
// MasterOrderID is empty for the first item of a checkout attempt.
type BookingRequest struct {
	VendorID       string
	Product        Product
	Event          EventDetails
	Customer       Customer
	Amount         int64
	IdempotencyKey string
	MasterOrderID  string
}

// BookingReceipt is returned by the booking service for a created sub-order.
type BookingReceipt struct {
	ID            string
	MasterOrderID string
	Status        BookingStatus
}

// SubOrder is one vendor's booking inside a master order.
type SubOrder struct {
	ID            string
	MasterOrderID string
	VendorID      string
	VendorName    string
	Product       Product
	Amount        int64
	Status        BookingStatus
}
