package test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/samber/lo"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
)

// Marketplace is an in-memory stand-in for the booking, order, catalog and
// payment services. It honours idempotency keys and recomputes aggregate
// status from sub-orders the way the order service is expected to.
type Marketplace struct {
	mu sync.Mutex

	orders   map[string]*model.MasterOrder
	sequence []string
	receipts map[string]model.BookingReceipt
	settling map[string]int
	nextID   int

	Vendors map[string]string

	// CreateErrs fails bookings for the given vendor ids.
	CreateErrs map[string]error
	// VendorErrs fails catalog lookups for the given vendor ids.
	VendorErrs map[string]error
	PaymentErr error
	DeleteErr  error
	// SettleAfter is the number of List calls after a payment before the
	// order shows as PAID.
	SettleAfter int
	Verified    bool

	CreateCalls  int
	DeleteCalls  int
	ListCalls    int
	VendorCalls  int
	PaymentCalls int
	Requests     []model.BookingRequest
}

// NewMarketplace returns an empty backend.
func NewMarketplace() *Marketplace {
	return &Marketplace{
		orders:     make(map[string]*model.MasterOrder),
		receipts:   make(map[string]model.BookingReceipt),
		settling:   make(map[string]int),
		Vendors:    make(map[string]string),
		CreateErrs: make(map[string]error),
		VendorErrs: make(map[string]error),
		Verified:   true,
	}
}

func (m *Marketplace) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

// Create implements the booking client.
func (m *Marketplace) Create(_ context.Context, req model.BookingRequest) (*model.BookingReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	m.Requests = append(m.Requests, req)

	if err := m.CreateErrs[req.VendorID]; err != nil {
		return nil, err
	}
	if receipt, ok := m.receipts[req.IdempotencyKey]; ok {
		return &receipt, nil
	}

	var order *model.MasterOrder
	if req.MasterOrderID == "" {
		order = &model.MasterOrder{ID: m.id("order"), CustomerID: req.Customer.ID}
		m.orders[order.ID] = order
		m.sequence = append(m.sequence, order.ID)
	} else {
		var ok bool
		if order, ok = m.orders[req.MasterOrderID]; !ok {
			return nil, &domainErrors.StatusError{Service: "booking", StatusCode: http.StatusNotFound}
		}
	}

	sub := model.SubOrder{
		ID:            m.id("sub"),
		MasterOrderID: order.ID,
		VendorID:      req.VendorID,
		Product:       req.Product,
		Amount:        req.Amount,
		Status:        model.BookingStatusAwaitingApproval,
	}
	order.SubOrders = append(order.SubOrders, sub)
	m.recompute(order)

	receipt := model.BookingReceipt{ID: sub.ID, MasterOrderID: order.ID, Status: sub.Status}
	m.receipts[req.IdempotencyKey] = receipt
	return &receipt, nil
}

// Delete implements the booking client.
func (m *Marketplace) Delete(_ context.Context, orderID, subOrderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	order, ok := m.orders[orderID]
	if !ok {
		return &domainErrors.StatusError{Service: "booking", StatusCode: http.StatusNotFound}
	}
	order.SubOrders = lo.Reject(order.SubOrders, func(s model.SubOrder, _ int) bool { return s.ID == subOrderID })
	if len(order.SubOrders) == 0 {
		delete(m.orders, orderID)
		m.sequence = lo.Without(m.sequence, orderID)
		return nil
	}
	m.recompute(order)
	return nil
}

// List implements the order client.
func (m *Marketplace) List(_ context.Context, customerID string) ([]model.MasterOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	for orderID, remaining := range m.settling {
		if remaining <= 0 {
			if order, ok := m.orders[orderID]; ok {
				order.Status = model.AggregateStatusPaid
			}
			delete(m.settling, orderID)
			continue
		}
		m.settling[orderID] = remaining - 1
	}

	result := make([]model.MasterOrder, 0, len(m.sequence))
	for _, id := range m.sequence {
		order := m.orders[id]
		if order.CustomerID != "" && order.CustomerID != customerID {
			continue
		}
		cp := *order
		cp.SubOrders = append([]model.SubOrder(nil), order.SubOrders...)
		result = append(result, cp)
	}
	return result, nil
}

// VendorName implements the catalog client.
func (m *Marketplace) VendorName(_ context.Context, vendorID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.VendorCalls++
	if err := m.VendorErrs[vendorID]; err != nil {
		return "", err
	}
	name, ok := m.Vendors[vendorID]
	if !ok {
		return "", &domainErrors.StatusError{Service: "catalog", StatusCode: http.StatusNotFound}
	}
	return name, nil
}

// Initiate implements the payment client.
func (m *Marketplace) Initiate(_ context.Context, orderID string, amount int64, currency string) (*model.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PaymentCalls++
	if m.PaymentErr != nil {
		return nil, m.PaymentErr
	}
	return &model.PaymentIntent{
		MasterOrderID:   orderID,
		Amount:          amount,
		Currency:        currency,
		Method:          model.PaymentMethodOnline,
		GatewayOrderRef: "gw-" + orderID,
	}, nil
}

// Verify implements the payment client.
func (m *Marketplace) Verify(_ context.Context, v model.PaymentVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PaymentCalls++
	if m.PaymentErr != nil {
		return m.PaymentErr
	}
	if !m.Verified {
		return &domainErrors.StatusError{Service: "payment", StatusCode: http.StatusUnprocessableEntity}
	}
	if orderID, ok := strings.CutPrefix(v.GatewayOrderRef, "gw-"); ok {
		m.settling[orderID] = m.SettleAfter
	}
	return nil
}

// ConfirmCOD implements the payment client.
func (m *Marketplace) ConfirmCOD(_ context.Context, orderID string, _ int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PaymentCalls++
	if m.PaymentErr != nil {
		return m.PaymentErr
	}
	if _, ok := m.orders[orderID]; !ok {
		return &domainErrors.StatusError{Service: "payment", StatusCode: http.StatusNotFound}
	}
	m.settling[orderID] = m.SettleAfter
	return nil
}

// SetStatus simulates a vendor approving or rejecting a sub-order.
func (m *Marketplace) SetStatus(subOrderID string, status model.BookingStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, order := range m.orders {
		for i := range order.SubOrders {
			if order.SubOrders[i].ID == subOrderID {
				order.SubOrders[i].Status = status
				m.recompute(order)
				return
			}
		}
	}
}

// Order returns a copy of an order, if present.
func (m *Marketplace) Order(orderID string) (model.MasterOrder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return model.MasterOrder{}, false
	}
	cp := *order
	cp.SubOrders = append([]model.SubOrder(nil), order.SubOrders...)
	return cp, true
}

// PutOrder stores order as-is.
func (m *Marketplace) PutOrder(order model.MasterOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.orders[order.ID]; !exists {
		m.sequence = append(m.sequence, order.ID)
	}
	cp := order
	m.orders[order.ID] = &cp
}

func (m *Marketplace) recompute(order *model.MasterOrder) {
	order.TotalAmount = model.SubOrderTotal(order.SubOrders)
	if order.Status != model.AggregateStatusPaid {
		order.Status = model.DeriveAggregateStatus(order.SubOrders)
	}
}
