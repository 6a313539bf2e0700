package model

import "time"

// Product references the catalog entry a line item books.
type Product struct {
	ID      string
	Name    string
	Package string
}

// LineItem is a single vendor offering placed in the cart.
// UnitPrice is expressed in the smallest currency unit.
type LineItem struct {
	ID        string
	VendorID  string
	Product   Product
	UnitPrice int64
}

// Customer holds the contact block sent with every booking.
type Customer struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Address string
}

// EventDetails describes the event the bookings are made for.
type EventDetails struct {
	Type       string
	Date       time.Time
	GuestCount int
	Venue      string
}

// Cart is the checkout input: ordered line items plus shared metadata.
type Cart struct {
	Items    []LineItem
	Customer Customer
	Event    EventDetails
}

// Total sums unit prices of all items.
func (c Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.UnitPrice
	}
	return total
}
