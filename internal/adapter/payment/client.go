package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/gateway"
)

const service = "payment"

// ErrVerificationRejected is returned when the service does not accept a
// widget callback.
var ErrVerificationRejected = fmt.Errorf("payment verification rejected: %w", domainErrors.ErrUpstream)

// Client drives the payment service.
type Client interface {
	Initiate(ctx context.Context, orderID string, amount int64, currency string) (*model.PaymentIntent, error)
	Verify(ctx context.Context, v model.PaymentVerification) error
	ConfirmCOD(ctx context.Context, orderID string, amount int64, currency string) error
}

// HTTPClient implements Client through the authenticated gateway.
type HTTPClient struct {
	baseURL *url.URL
	sender  gateway.Sender
}

type amountRequest struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type initiateResponse struct {
	GatewayOrderRef string `json:"gateway_order_ref"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

type verifyRequest struct {
	GatewayOrderRef string `json:"gateway_order_ref"`
	PaymentRef      string `json:"payment_ref"`
	Signature       string `json:"signature"`
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}

// NewHTTPClient creates a payment client rooted at baseURL.
func NewHTTPClient(baseURL string, sender gateway.Sender) (*HTTPClient, error) {
	parsed, err := gateway.ParseBaseURL(service, baseURL)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{baseURL: parsed, sender: sender}, nil
}

// Initiate opens an online payment and returns the reference the payment
// widget needs.
func (c *HTTPClient) Initiate(ctx context.Context, orderID string, amount int64, currency string) (*model.PaymentIntent, error) {
	var data initiateResponse
	if _, err := gateway.JSON(ctx, c.sender, gateway.Call{
		Service: service,
		Method:  http.MethodPost,
		URL:     gateway.Endpoint(c.baseURL, "/api/payments/initiate").String(),
		In:      amountRequest{OrderID: orderID, Amount: amount, Currency: currency},
		Out:     &data,
	}); err != nil {
		return nil, err
	}

	intent := &model.PaymentIntent{
		MasterOrderID:   orderID,
		Amount:          data.Amount,
		Currency:        data.Currency,
		Method:          model.PaymentMethodOnline,
		GatewayOrderRef: data.GatewayOrderRef,
	}
	if intent.Amount == 0 {
		intent.Amount = amount
	}
	if intent.Currency == "" {
		intent.Currency = currency
	}
	return intent, nil
}

// Verify submits the widget's success callback.
func (c *HTTPClient) Verify(ctx context.Context, v model.PaymentVerification) error {
	data := verifyResponse{Verified: true}
	if _, err := gateway.JSON(ctx, c.sender, gateway.Call{
		Service: service,
		Method:  http.MethodPost,
		URL:     gateway.Endpoint(c.baseURL, "/api/payments/verify").String(),
		In:      verifyRequest{GatewayOrderRef: v.GatewayOrderRef, PaymentRef: v.PaymentRef, Signature: v.Signature},
		Out:     &data,
	}); err != nil {
		return err
	}
	if !data.Verified {
		return ErrVerificationRejected
	}
	return nil
}

// ConfirmCOD records a cash-on-delivery settlement.
func (c *HTTPClient) ConfirmCOD(ctx context.Context, orderID string, amount int64, currency string) error {
	_, err := gateway.JSON(ctx, c.sender, gateway.Call{
		Service: service,
		Method:  http.MethodPost,
		URL:     gateway.Endpoint(c.baseURL, "/api/payments/cod").String(),
		In:      amountRequest{OrderID: orderID, Amount: amount, Currency: currency},
	})
	return err
}
