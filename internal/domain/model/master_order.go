package model

import (
	"time"

	"github.com/samber/lo"
)

// AggregateStatus is the order-level status derived from sub-order statuses.
type AggregateStatus string

const (
	AggregateStatusAwaitingApproval  AggregateStatus = "AWAITING_APPROVAL"
	AggregateStatusPartiallyApproved AggregateStatus = "PARTIALLY_APPROVED"
	AggregateStatusFullyApproved     AggregateStatus = "FULLY_APPROVED"
	AggregateStatusRejected          AggregateStatus = "REJECTED"
	AggregateStatusPaid              AggregateStatus = "PAID"
)

// MasterOrder groups every sub-order created by one checkout action.
// Status is authoritative as reported by the order service.
type MasterOrder struct {
	ID          string
	CustomerID  string
	TotalAmount int64
	Status      AggregateStatus
	SubOrders   []SubOrder
	CreatedAt   time.Time
}

// SubOrderIDs returns identifiers of all sub-orders in service order.
func (o MasterOrder) SubOrderIDs() []string {
	return lo.Map(o.SubOrders, func(s SubOrder, _ int) string { return s.ID })
}

// Find looks up a sub-order by id.
func (o MasterOrder) Find(subOrderID string) (SubOrder, bool) {
	return lo.Find(o.SubOrders, func(s SubOrder) bool { return s.ID == subOrderID })
}

// DeriveAggregateStatus infers the order status from its sub-orders.
// The order service owns the real rule; this is used only when the service
// omits a status. An empty set yields "" since such an order no longer exists.
// PARTIALLY_APPROVED needs a sub-order still awaiting approval; once every
// non-approved member is REJECTED the order is REJECTED until those are removed.
func DeriveAggregateStatus(subOrders []SubOrder) AggregateStatus {
	total := len(subOrders)
	if total == 0 {
		return ""
	}
	approved := lo.CountBy(subOrders, func(s SubOrder) bool { return s.Status == BookingStatusApproved })
	rejected := lo.CountBy(subOrders, func(s SubOrder) bool { return s.Status == BookingStatusRejected })
	awaiting := total - approved - rejected

	switch {
	case approved == total:
		return AggregateStatusFullyApproved
	case awaiting == 0:
		return AggregateStatusRejected
	case approved > 0:
		return AggregateStatusPartiallyApproved
	default:
		return AggregateStatusAwaitingApproval
	}
}

// SubOrderTotal sums sub-order amounts.
func SubOrderTotal(subOrders []SubOrder) int64 {
	return lo.SumBy(subOrders, func(s SubOrder) int64 { return s.Amount })
}
