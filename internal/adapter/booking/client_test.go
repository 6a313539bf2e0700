package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/eventmart/internal/config"
	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/gateway"
)

func respond(status int, body string) gateway.SenderFunc {
	return func(context.Context, gateway.Request) (*gateway.Response, error) {
		return &gateway.Response{StatusCode: status, Body: []byte(body)}, nil
	}
}

func sampleRequest() model.BookingRequest {
	return model.BookingRequest{
		VendorID:       "v-1",
		Product:        model.Product{ID: "p-1", Name: "Decor", Package: "gold"},
		Event:          model.EventDetails{Type: "wedding", Date: time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC), GuestCount: 120},
		Customer:       model.Customer{Name: "Ana", Email: "ana@example.com", Phone: "+100"},
		Amount:         599,
		IdempotencyKey: "booking-i-1-1",
	}
}

func TestCreateSendsIdempotencyKeyAndPayload(t *testing.T) {
	var captured gateway.Request
	sender := gateway.SenderFunc(func(_ context.Context, req gateway.Request) (*gateway.Response, error) {
		captured = req
		return &gateway.Response{StatusCode: http.StatusCreated, Body: []byte(`{"id":"s-1","master_order_id":"m-1","status":"AWAITING_APPROVAL"}`)}, nil
	})

	client, err := NewHTTPClient("http://booking.local", sender)
	require.NoError(t, err)

	receipt, err := client.Create(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, model.BookingReceipt{ID: "s-1", MasterOrderID: "m-1", Status: model.BookingStatusAwaitingApproval}, *receipt)

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "http://booking.local/api/bookings", captured.URL)
	assert.Equal(t, "booking-i-1-1", captured.Header.Get("Idempotency-Key"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured.Body, &body))
	assert.Equal(t, "v-1", body["vendor_id"])
	assert.EqualValues(t, 599, body["amount"])
	assert.NotContains(t, body, "master_order_id")
	assert.Equal(t, "2026-12-05", body["event"].(map[string]any)["date"])
}

func TestCreateAttachesMasterOrder(t *testing.T) {
	var captured createRequest
	sender := gateway.SenderFunc(func(_ context.Context, req gateway.Request) (*gateway.Response, error) {
		require.NoError(t, json.Unmarshal(req.Body, &captured))
		return &gateway.Response{StatusCode: http.StatusOK, Body: []byte(`{"id":"s-2","master_order_id":"m-1"}`)}, nil
	})
	client, err := NewHTTPClient("http://booking.local", sender)
	require.NoError(t, err)

	req := sampleRequest()
	req.MasterOrderID = "m-1"
	receipt, err := client.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "m-1", captured.MasterOrderID)
	assert.Equal(t, model.BookingStatusAwaitingApproval, receipt.Status)
}

func TestCreateErrors(t *testing.T) {
	cases := []struct {
		name   string
		sender gateway.Sender
		errIs  error
	}{
		{name: "rejected", sender: respond(http.StatusUnprocessableEntity, `{"error":"vendor unavailable"}`), errIs: domainErrors.ErrUpstream},
		{name: "transport", sender: gateway.SenderFunc(func(context.Context, gateway.Request) (*gateway.Response, error) {
			return nil, &domainErrors.TransportError{Op: "POST booking", Err: context.DeadlineExceeded}
		}), errIs: domainErrors.ErrTransport},
		{name: "auth", sender: gateway.SenderFunc(func(context.Context, gateway.Request) (*gateway.Response, error) {
			return nil, &domainErrors.AuthError{Reason: "expired"}
		}), errIs: domainErrors.ErrAuthTerminal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewHTTPClient("http://booking.local", tc.sender)
			require.NoError(t, err)
			_, err = client.Create(context.Background(), sampleRequest())
			assert.ErrorIs(t, err, tc.errIs)
		})
	}

	client, err := NewHTTPClient("http://booking.local", respond(http.StatusOK, `{}`))
	require.NoError(t, err)
	_, err = client.Create(context.Background(), sampleRequest())
	assert.Error(t, err)
}

func TestDeleteTargetsSubOrder(t *testing.T) {
	var captured gateway.Request
	sender := gateway.SenderFunc(func(_ context.Context, req gateway.Request) (*gateway.Response, error) {
		captured = req
		return &gateway.Response{StatusCode: http.StatusNoContent}, nil
	})
	client, err := NewHTTPClient("http://booking.local", sender)
	require.NoError(t, err)

	require.NoError(t, client.Delete(context.Background(), "m-1", "s-2"))
	assert.Equal(t, http.MethodDelete, captured.Method)
	assert.Equal(t, "http://booking.local/api/orders/m-1/bookings/s-2", captured.URL)
	assert.Nil(t, captured.Body)
}

func TestNewClientUsesConfig(t *testing.T) {
	_, err := newClient(&config.Config{BookingServiceURL: "relative"}, respond(http.StatusOK, ""))
	assert.Error(t, err)

	client, err := newClient(&config.Config{BookingServiceURL: "http://booking.local"}, respond(http.StatusOK, ""))
	require.NoError(t, err)
	assert.NotNil(t, client)
}
