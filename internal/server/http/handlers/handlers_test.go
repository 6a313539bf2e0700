package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/server/http/dto"
	"github.com/polkiloo/eventmart/internal/server/http/middleware"
	"github.com/polkiloo/eventmart/internal/test/stubs"
	"github.com/polkiloo/eventmart/internal/usecase"
	"github.com/polkiloo/eventmart/internal/worker"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, path, route string, handler gin.HandlerFunc, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		c.Set(middleware.CustomerIDContextKey, "cust-1")
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestCurrentCustomerID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentCustomerID(c); got != "" {
		t.Fatalf("expected empty id when not set, got %q", got)
	}
	c.Set(middleware.CustomerIDContextKey, "cust-9")
	if got := CurrentCustomerID(c); got != "cust-9" {
		t.Fatalf("expected cust-9, got %q", got)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainErrors.NewValidation("items", "cart is empty"), http.StatusBadRequest, "validation_failed"},
		{&domainErrors.AuthError{Reason: "renewal rejected"}, http.StatusUnauthorized, "session_expired"},
		{fmt.Errorf("order x: %w", domainErrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{domainErrors.ErrNotPayable, http.StatusConflict, "conflict"},
		{domainErrors.ErrSubOrderNotDeletable, http.StatusConflict, "conflict"},
		{&domainErrors.TransportError{Op: "GET orders", Err: errors.New("refused")}, http.StatusServiceUnavailable, "service_unavailable"},
		{&domainErrors.StatusError{Service: "payment", StatusCode: http.StatusInternalServerError}, http.StatusBadGateway, "upstream_rejected"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.code+" "+tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeError(c, tc.err)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if got := decodeError(t, w).Error; got != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, got)
			}
		})
	}
}

func TestSessionHandlerLogin(t *testing.T) {
	var gotEmail string
	facade := stubs.MarketplaceFacadeStub{LoginFn: func(_ context.Context, email, _ string) (string, error) {
		gotEmail = email
		return "cust-7", nil
	}}
	body, _ := json.Marshal(dto.LoginRequest{Email: "ana@example.com", Password: "pw"})
	w := performRequest(t, http.MethodPost, "/api/session", "/api/session", NewSessionHandler(facade).Login, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp dto.SessionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.CustomerID != "cust-7" || gotEmail != "ana@example.com" {
		t.Fatalf("unexpected login result %+v, email %q", resp, gotEmail)
	}

	w = performRequest(t, http.MethodPost, "/api/session", "/api/session", NewSessionHandler(facade).Login, []byte("{"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", w.Code)
	}

	failing := stubs.MarketplaceFacadeStub{LoginFn: func(context.Context, string, string) (string, error) {
		return "", &domainErrors.StatusError{Service: "auth", StatusCode: http.StatusUnauthorized}
	}}
	w = performRequest(t, http.MethodPost, "/api/session", "/api/session", NewSessionHandler(failing).Login, body)
	if w.Code != http.StatusUnauthorized || decodeError(t, w).Error != "invalid_credentials" {
		t.Fatalf("expected 401 invalid_credentials, got %d", w.Code)
	}
}

func TestCheckoutHandlerSubmit(t *testing.T) {
	req := dto.CheckoutRequest{
		Items:    []dto.LineItemRequest{{ID: "a", VendorID: "vendor-a", ProductID: "p", ProductName: "Decor", UnitPrice: 599}},
		Customer: dto.CustomerRequest{Name: "Ana", Email: "ana@example.com", Phone: "1"},
		Event:    dto.EventRequest{Type: "wedding", Date: "2026-12-05", GuestCount: 10},
	}

	var got model.Cart
	facade := stubs.MarketplaceFacadeStub{CheckoutFn: func(_ context.Context, cart model.Cart) (*usecase.CheckoutResult, error) {
		got = cart
		return stubs.MarketplaceFacadeStub{}.Checkout(context.Background(), cart)
	}}
	body, _ := json.Marshal(req)
	w := performRequest(t, http.MethodPost, "/api/checkout", "/api/checkout", NewCheckoutHandler(facade).Submit, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !got.Event.Date.Equal(time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC)) || got.Items[0].Product.Name != "Decor" {
		t.Fatalf("cart not mapped: %+v", got)
	}
	var resp dto.CheckoutResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.NeedsAttention || resp.Items[0].SubOrderID != "sub-a" {
		t.Fatalf("unexpected response %+v", resp)
	}

	req.Event.Date = "05/12/2026"
	body, _ = json.Marshal(req)
	w = performRequest(t, http.MethodPost, "/api/checkout", "/api/checkout", NewCheckoutHandler(facade).Submit, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}
}

func TestCheckoutHandlerAllFailed(t *testing.T) {
	result := &usecase.CheckoutResult{
		AttemptID: "attempt-1",
		Outcomes: []usecase.ItemOutcome{
			{Item: model.LineItem{ID: "a"}, Err: errors.New("down"), Kind: domainErrors.KindTransport},
		},
	}
	facade := stubs.MarketplaceFacadeStub{RetryFn: func(context.Context, string) (*usecase.CheckoutResult, error) {
		return result, domainErrors.ErrCheckoutFailed
	}}
	body, _ := json.Marshal(dto.RetryCheckoutRequest{AttemptID: "attempt-0"})
	w := performRequest(t, http.MethodPost, "/api/checkout/retry", "/api/checkout/retry", NewCheckoutHandler(facade).Retry, body)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	var resp dto.CheckoutResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.AttemptID != "attempt-1" || resp.Items[0].Error != "down" {
		t.Fatalf("expected per-item report, got %+v", resp)
	}

	w = performRequest(t, http.MethodPost, "/api/checkout/retry", "/api/checkout/retry", NewCheckoutHandler(facade).Retry, []byte(`{}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without attempt id, got %d", w.Code)
	}
}

func TestOrderHandlerList(t *testing.T) {
	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	facade := stubs.MarketplaceFacadeStub{OrdersFn: func(context.Context) ([]model.MasterOrder, error) {
		return []model.MasterOrder{{
			ID: "order-1", Status: model.AggregateStatusFullyApproved, TotalAmount: 599, CreatedAt: created,
			SubOrders: []model.SubOrder{{ID: "s-1", VendorID: "v", VendorName: "Bloom", Amount: 599, Status: model.BookingStatusApproved}},
		}}, nil
	}}
	w := performRequest(t, http.MethodGet, "/api/orders", "/api/orders", NewOrderHandler(facade).List, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp []dto.OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || !resp[0].Payable || resp[0].SubOrders[0].Deletable || resp[0].SubOrders[0].VendorName != "Bloom" {
		t.Fatalf("unexpected orders %+v", resp)
	}

	failing := stubs.MarketplaceFacadeStub{OrdersFn: func(context.Context) ([]model.MasterOrder, error) {
		return nil, &domainErrors.AuthError{Reason: "renewal rejected"}
	}}
	w = performRequest(t, http.MethodGet, "/api/orders", "/api/orders", NewOrderHandler(failing).List, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestOrderHandlerDeleteSubOrder(t *testing.T) {
	route := "/api/orders/:order_id/sub-orders/:sub_order_id"
	var gotOrder, gotSub string
	facade := stubs.MarketplaceFacadeStub{DeleteFn: func(_ context.Context, orderID, subOrderID string) (*model.MasterOrder, error) {
		gotOrder, gotSub = orderID, subOrderID
		return &model.MasterOrder{ID: orderID, Status: model.AggregateStatusAwaitingApproval}, nil
	}}
	w := performRequest(t, http.MethodDelete, "/api/orders/o-1/sub-orders/s-2", route, NewOrderHandler(facade).DeleteSubOrder, nil)
	if w.Code != http.StatusOK || gotOrder != "o-1" || gotSub != "s-2" {
		t.Fatalf("unexpected delete: %d %q %q", w.Code, gotOrder, gotSub)
	}
	var resp dto.DeleteSubOrderResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Cancelled || resp.Order == nil {
		t.Fatalf("expected remaining order, got %+v", resp)
	}

	w = performRequest(t, http.MethodDelete, "/api/orders/o-1/sub-orders/s-2", route, NewOrderHandler(stubs.MarketplaceFacadeStub{}).DeleteSubOrder, nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Cancelled {
		t.Fatalf("expected cancelled order, got %+v", resp)
	}

	conflict := stubs.MarketplaceFacadeStub{DeleteFn: func(context.Context, string, string) (*model.MasterOrder, error) {
		return nil, domainErrors.ErrSubOrderNotDeletable
	}}
	w = performRequest(t, http.MethodDelete, "/api/orders/o-1/sub-orders/s-2", route, NewOrderHandler(conflict).DeleteSubOrder, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestPaymentHandlers(t *testing.T) {
	var verified model.PaymentVerification
	facade := stubs.MarketplaceFacadeStub{
		StartOnlineFn: func(context.Context, string) (*model.PaymentIntent, error) {
			return nil, domainErrors.ErrNotPayable
		},
		VerifyOnlineFn: func(_ context.Context, orderID string, v model.PaymentVerification) (worker.Settlement, error) {
			verified = v
			return worker.Settlement{OrderID: orderID, State: worker.SettlementPending}, nil
		},
	}
	handler := NewPaymentHandler(facade)

	w := performRequest(t, http.MethodPost, "/o/o-1/online", "/o/:order_id/online", handler.StartOnline, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for unpayable order, got %d", w.Code)
	}

	body, _ := json.Marshal(dto.VerifyPaymentRequest{GatewayOrderRef: "gw-o-1", PaymentRef: "pay", Signature: "sig"})
	w = performRequest(t, http.MethodPost, "/o/o-1/verify", "/o/:order_id/verify", handler.VerifyOnline, body)
	if w.Code != http.StatusAccepted || verified.GatewayOrderRef != "gw-o-1" {
		t.Fatalf("unexpected verify result %d %+v", w.Code, verified)
	}

	w = performRequest(t, http.MethodPost, "/o/o-1/cod", "/o/:order_id/cod", handler.CashOnDelivery, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	var cod dto.CashOnDeliveryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &cod)
	if cod.Payment.Method != "COD" || cod.Settlement.State != "pending" {
		t.Fatalf("unexpected cod response %+v", cod)
	}

	w = performRequest(t, http.MethodGet, "/o/o-1/settlement", "/o/:order_id/settlement", handler.Settlement, nil)
	var settlement dto.SettlementResponse
	_ = json.Unmarshal(w.Body.Bytes(), &settlement)
	if w.Code != http.StatusOK || settlement.State != "settled" || settlement.Observed != "PAID" {
		t.Fatalf("unexpected settlement %d %+v", w.Code, settlement)
	}
}
