package handlers

import (
	"net/http"
	"time"

	"shawarma-sheesh-api/middleware"
	"shawarma-sheesh-api/models"
	"shawarma-sheesh-api/notify"
	"shawarma-sheesh-api/statemachine"

	"github.com/gin-gonic/gin"
)

type StatusUpdateRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note" binding:"max=500"`
}

type PaymentUpdateRequest struct {
	Status        models.PaymentStatus `json:"status" binding:"required,oneof=pending paid failed"`
	TransactionID string               `json:"transaction_id" binding:"max=100"`
}

// AdminGetAllOrders lists orders for the dashboard with a per-status summary
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	query := h.db(c).Preload("User").Preload("Items")

	if status := c.Query("status"); status != "" {
		if !statemachine.IsKnown(models.OrderStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status " + status})
			return
		}
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		query = query.Where("order_day = ?", date)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		h.internalError(c, err, "list orders")
		return
	}

	summary := map[string]int{}
	var totalRevenue float64
	for _, o := range orders {
		summary[string(o.Status)]++
		if o.Status == models.StatusDelivered {
			totalRevenue += o.TotalPrice
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": totalRevenue,
		"count":         len(orders),
		"orders":        orders,
	})
}

func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var order models.Order
	err := h.db(c).
		Preload("User").
		Preload("Items").
		Preload("Address.Location").
		Preload("StatusHistory").
		First(&order, id).Error
	if err != nil {
		h.notFoundOr(c, err, "Order")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":            order,
		"valid_next_state": statemachine.ValidTransitionsFrom(order.Status),
	})
}

// UpdateOrderStatus moves an order along the lifecycle on behalf of staff
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := h.db(c).First(&order, id).Error; err != nil {
		h.notFoundOr(c, err, "Order")
		return
	}

	if err := statemachine.CanTransition(order.Status, req.Status, statemachine.ActorStaff); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":            "Invalid state transition",
			"reason":           err.Error(),
			"current_state":    order.Status,
			"valid_next_state": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	prev := order.Status
	if err := h.changeStatus(c, &order, req.Status, middleware.GetUserID(c), req.Note); err != nil {
		h.internalError(c, err, "update order status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        order.ID,
		"previous_status": prev,
		"new_status":      order.Status,
	})
}

// AdminForceOrderStatus lets admin override any order state (emergency use)
func (h *Handler) AdminForceOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
		Reason string             `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !statemachine.IsKnown(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status " + string(req.Status)})
		return
	}

	var order models.Order
	if err := h.db(c).First(&order, id).Error; err != nil {
		h.notFoundOr(c, err, "Order")
		return
	}
	prev := order.Status
	if err := h.changeStatus(c, &order, req.Status, middleware.GetUserID(c), "[ADMIN OVERRIDE] "+req.Reason); err != nil {
		h.internalError(c, err, "force order status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status force-updated by admin",
		"order_id":        order.ID,
		"previous_status": prev,
		"new_status":      req.Status,
	})
}

// UpdateOrderPayment records the outcome of a CliQ transfer checked by staff.
// Card payments are only updated by the payment provider.
func (h *Handler) UpdateOrderPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req PaymentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := h.db(c).First(&order, id).Error; err != nil {
		h.notFoundOr(c, err, "Order")
		return
	}
	if order.Payment.Method != models.PaymentMethodCliQ {
		c.JSON(http.StatusConflict, gin.H{"error": "Card payments are confirmed by the payment provider"})
		return
	}

	updates := map[string]any{"payment_status": req.Status}
	if req.TransactionID != "" {
		updates["payment_transaction_id"] = req.TransactionID
	}
	if err := h.db(c).Model(&order).Updates(updates).Error; err != nil {
		h.internalError(c, err, "update payment")
		return
	}
	order.Payment.Status = req.Status
	if req.TransactionID != "" {
		order.Payment.TransactionID = req.TransactionID
	}

	h.publish(notify.EventOrderUpdated, gin.H{"order_id": order.ID, "payment_status": order.Payment.Status})
	c.JSON(http.StatusOK, gin.H{"message": "Payment updated", "order_id": order.ID, "payment": order.Payment})
}
