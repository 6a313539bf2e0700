package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, lo.Map(orders, func(o model.MasterOrder, _ int) dto.OrderResponse {
		return toOrderResponse(o)
	}))
}

// DeleteSubOrder handles DELETE /api/orders/:order_id/sub-orders/:sub_order_id.
func (h *OrderHandler) DeleteSubOrder(c *gin.Context) {
	order, err := h.facade.DeleteSubOrder(c.Request.Context(), c.Param("order_id"), c.Param("sub_order_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusOK, dto.DeleteSubOrderResponse{Cancelled: true})
		return
	}
	resp := toOrderResponse(*order)
	c.JSON(http.StatusOK, dto.DeleteSubOrderResponse{Order: &resp})
}

func toOrderResponse(order model.MasterOrder) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:          order.ID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		Payable:     order.Status == model.AggregateStatusFullyApproved && order.TotalAmount > 0,
		SubOrders: lo.Map(order.SubOrders, func(s model.SubOrder, _ int) dto.SubOrderResponse {
			return dto.SubOrderResponse{
				ID:          s.ID,
				VendorID:    s.VendorID,
				VendorName:  s.VendorName,
				ProductName: s.Product.Name,
				Amount:      s.Amount,
				Status:      string(s.Status),
				Deletable:   s.Status.Deletable(),
			}
		}),
	}
	if !order.CreatedAt.IsZero() {
		created := order.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}
