package booking

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/gateway"
)

const service = "booking"

// Client creates and removes vendor bookings.
type Client interface {
	Create(ctx context.Context, req model.BookingRequest) (*model.BookingReceipt, error)
	Delete(ctx context.Context, orderID, subOrderID string) error
}

// HTTPClient implements Client through the authenticated gateway.
type HTTPClient struct {
	baseURL *url.URL
	sender  gateway.Sender
}

type productPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Package string `json:"package,omitempty"`
}

type eventPayload struct {
	Type       string `json:"type"`
	Date       string `json:"date"`
	GuestCount int    `json:"guest_count"`
	Venue      string `json:"venue,omitempty"`
}

type customerPayload struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

type createRequest struct {
	VendorID      string          `json:"vendor_id"`
	Product       productPayload  `json:"product"`
	Event         eventPayload    `json:"event"`
	Customer      customerPayload `json:"customer"`
	Amount        int64           `json:"amount"`
	MasterOrderID string          `json:"master_order_id,omitempty"`
}

type receiptResponse struct {
	ID            string `json:"id"`
	MasterOrderID string `json:"master_order_id"`
	Status        string `json:"status"`
}

// NewHTTPClient creates a booking client rooted at baseURL.
func NewHTTPClient(baseURL string, sender gateway.Sender) (*HTTPClient, error) {
	parsed, err := gateway.ParseBaseURL(service, baseURL)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{baseURL: parsed, sender: sender}, nil
}

// Create submits one booking. The idempotency key makes resubmission of the
// same request return the original sub-order.
func (c *HTTPClient) Create(ctx context.Context, req model.BookingRequest) (*model.BookingReceipt, error) {
	payload := createRequest{
		VendorID: req.VendorID,
		Product:  productPayload{ID: req.Product.ID, Name: req.Product.Name, Package: req.Product.Package},
		Event: eventPayload{
			Type:       req.Event.Type,
			Date:       req.Event.Date.UTC().Format(time.DateOnly),
			GuestCount: req.Event.GuestCount,
			Venue:      req.Event.Venue,
		},
		Customer: customerPayload{
			ID:      req.Customer.ID,
			Name:    req.Customer.Name,
			Email:   req.Customer.Email,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
		},
		Amount:        req.Amount,
		MasterOrderID: req.MasterOrderID,
	}

	var data receiptResponse
	_, err := gateway.JSON(ctx, c.sender, gateway.Call{
		Service: service,
		Method:  http.MethodPost,
		URL:     gateway.Endpoint(c.baseURL, "/api/bookings").String(),
		Header:  http.Header{"Idempotency-Key": []string{req.IdempotencyKey}},
		In:      payload,
		Out:     &data,
	})
	if err != nil {
		return nil, err
	}
	if data.ID == "" || data.MasterOrderID == "" {
		return nil, fmt.Errorf("booking response missing identifiers")
	}

	status := model.BookingStatus(data.Status)
	if status == "" {
		status = model.BookingStatusAwaitingApproval
	}
	return &model.BookingReceipt{ID: data.ID, MasterOrderID: data.MasterOrderID, Status: status}, nil
}

// Delete removes a sub-order from its master order.
func (c *HTTPClient) Delete(ctx context.Context, orderID, subOrderID string) error {
	_, err := gateway.JSON(ctx, c.sender, gateway.Call{
		Service: service,
		Method:  http.MethodDelete,
		URL:     gateway.Endpoint(c.baseURL, "/api/orders", orderID, "bookings", subOrderID).String(),
	})
	return err
}
