package dto

import "time"

// OrderResponse describes a master order.
type OrderResponse struct {
	ID          string             `json:"id"`
	Status      string             `json:"status"`
	TotalAmount int64              `json:"total_amount"`
	CreatedAt   *time.Time         `json:"created_at,omitempty"`
	Payable     bool               `json:"payable"`
	SubOrders   []SubOrderResponse `json:"sub_orders"`
}

// SubOrderResponse describes one vendor booking.
type SubOrderResponse struct {
	ID          string `json:"id"`
	VendorID    string `json:"vendor_id"`
	VendorName  string `json:"vendor_name,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	Deletable   bool   `json:"deletable"`
}

// DeleteSubOrderResponse carries the re-read order, or cancelled when the
// last sub-order was removed.
type DeleteSubOrderResponse struct {
	Cancelled bool           `json:"cancelled"`
	Order     *OrderResponse `json:"order,omitempty"`
}
