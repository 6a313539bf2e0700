package catalog

import (
	"context"
	"net/http"
	"net/url"

	"github.com/polkiloo/eventmart/internal/gateway"
)

const service = "catalog"

// Client resolves vendor display data.
type Client interface {
	VendorName(ctx context.Context, vendorID string) (string, error)
}

// HTTPClient implements Client through the authenticated gateway.
type HTTPClient struct {
	baseURL *url.URL
	sender  gateway.Sender
}

type vendorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewHTTPClient creates a catalog client rooted at baseURL.
func NewHTTPClient(baseURL string, sender gateway.Sender) (*HTTPClient, error) {
	parsed, err := gateway.ParseBaseURL(service, baseURL)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{baseURL: parsed, sender: sender}, nil
}

// VendorName fetches the display name of a vendor.
func (c *HTTPClient) VendorName(ctx context.Context, vendorID string) (string, error) {
	var data vendorResponse
	if _, err := gateway.JSON(ctx, c.sender, gateway.Call{
		Service: service,
		Method:  http.MethodGet,
		URL:     gateway.Endpoint(c.baseURL, "/api/vendors", vendorID).String(),
		Out:     &data,
	}); err != nil {
		return "", err
	}
	return data.Name, nil
}
