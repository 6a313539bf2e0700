package orders

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/lo"

	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/gateway"
)

const service = "orders"

// Client lists a customer's master orders.
type Client interface {
	List(ctx context.Context, customerID string) ([]model.MasterOrder, error)
}

// HTTPClient implements Client through the authenticated gateway.
type HTTPClient struct {
	baseURL *url.URL
	sender  gateway.Sender
}

type subOrderPayload struct {
	ID         string `json:"id"`
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name,omitempty"`
	Product    struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Package string `json:"package"`
	} `json:"product"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type orderPayload struct {
	ID          string            `json:"id"`
	CustomerID  string            `json:"customer_id"`
	TotalAmount int64             `json:"total_amount"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	SubOrders   []subOrderPayload `json:"sub_orders"`
}

// NewHTTPClient creates an order client rooted at baseURL.
func NewHTTPClient(baseURL string, sender gateway.Sender) (*HTTPClient, error) {
	parsed, err := gateway.ParseBaseURL(service, baseURL)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{baseURL: parsed, sender: sender}, nil
}

// List returns the customer's orders in the order the service reports them.
func (c *HTTPClient) List(ctx context.Context, customerID string) ([]model.MasterOrder, error) {
	endpoint := gateway.Endpoint(c.baseURL, "/api/orders")
	endpoint.RawQuery = url.Values{"customer_id": []string{customerID}}.Encode()

	var data []orderPayload
	if _, err := gateway.JSON(ctx, c.sender, gateway.Call{
		Service: service,
		Method:  http.MethodGet,
		URL:     endpoint.String(),
		Out:     &data,
	}); err != nil {
		return nil, err
	}

	return lo.Map(data, func(o orderPayload, _ int) model.MasterOrder { return o.toModel() }), nil
}

func (o orderPayload) toModel() model.MasterOrder {
	subOrders := lo.Map(o.SubOrders, func(s subOrderPayload, _ int) model.SubOrder {
		return model.SubOrder{
			ID:            s.ID,
			MasterOrderID: o.ID,
			VendorID:      s.VendorID,
			VendorName:    s.VendorName,
			Product:       model.Product{ID: s.Product.ID, Name: s.Product.Name, Package: s.Product.Package},
			Amount:        s.Amount,
			Status:        model.BookingStatus(s.Status),
		}
	})
	return model.MasterOrder{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		TotalAmount: o.TotalAmount,
		Status:      model.AggregateStatus(o.Status),
		SubOrders:   subOrders,
		CreatedAt:   o.CreatedAt,
	}
}
