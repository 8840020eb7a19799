package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"shawarma-sheesh-api/models"
	"shawarma-sheesh-api/notify"
	"shawarma-sheesh-api/payment"
	"shawarma-sheesh-api/pricing"

	"github.com/gin-gonic/gin"
)

const maxCallbackBody = 64 << 10

type PaymentSessionRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// CreatePaymentSession opens a card checkout for one of the caller's orders
func (h *Handler) CreatePaymentSession(c *gin.Context) {
	var req PaymentSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, ok := h.loadOwnOrder(c, req.OrderID)
	if !ok {
		return
	}

	switch {
	case order.Payment.Method != models.PaymentMethodCard:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is not paid by card"})
		return
	case order.Payment.Status == models.PaymentStatusPaid:
		c.JSON(http.StatusConflict, gin.H{"error": "Order is already paid"})
		return
	case order.Status == models.StatusCancelled:
		c.JSON(http.StatusConflict, gin.H{"error": "Order is cancelled"})
		return
	}

	session, err := h.Payments.CreateSession(c.Request.Context(), payment.SessionRequest{
		OrderID:     order.ID,
		Description: fmt.Sprintf("Shawarma Sheesh order #%d (%s)", order.SequenceNumber, order.OrderDay),
		Amount:      pricing.MinorUnits(order.TotalPrice, h.Settings.PaymentMinorUnits),
		Currency:    h.Settings.PaymentCurrency,
		SuccessURL:  h.Settings.PaymentSuccessURL,
		CancelURL:   h.Settings.PaymentCancelURL,
	})
	if err != nil {
		h.internalError(c, err, "create payment session")
		return
	}

	updates := map[string]any{"payment_session_id": session.ID, "payment_status": models.PaymentStatusPending}
	if err := h.db(c).Model(order).Updates(updates).Error; err != nil {
		h.internalError(c, err, "store payment session")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id":   order.ID,
		"session_id": session.ID,
		"url":        session.URL,
	})
}

// GetPaymentStatus returns the order's payment, refreshing pending card
// payments from the provider.
func (h *Handler) GetPaymentStatus(c *gin.Context) {
	id, ok := paramID(c, "orderId")
	if !ok {
		return
	}
	order, ok := h.loadOwnOrder(c, id)
	if !ok {
		return
	}

	if order.Payment.Method == models.PaymentMethodCard &&
		order.Payment.Status == models.PaymentStatusPending &&
		order.Payment.SessionID != "" {
		session, err := h.Payments.GetSession(c.Request.Context(), order.Payment.SessionID)
		if err != nil {
			h.internalError(c, err, "get payment session")
			return
		}
		if err := h.applyPayment(c, order, session); err != nil {
			h.internalError(c, err, "update payment")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":     order.ID,
		"order_status": order.Status,
		"payment":      order.Payment,
	})
}

// PaymentCallback receives signed notifications from the payment provider
func (h *Handler) PaymentCallback(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read body"})
		return
	}

	session, err := h.Payments.ParseCallback(payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, payment.ErrUnhandledEvent) {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err != nil {
		h.Log.Warn("rejected payment callback", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment callback"})
		return
	}

	var order models.Order
	query := h.db(c)
	if session.OrderID != 0 {
		err = query.First(&order, session.OrderID).Error
	} else {
		err = query.Where("payment_session_id = ?", session.ID).First(&order).Error
	}
	if err != nil {
		// acknowledged so the provider stops retrying an order we cannot match
		h.Log.Warn("payment callback for unknown order", "session_id", session.ID, "order_id", session.OrderID, "error", err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.applyPayment(c, &order, session); err != nil {
		h.internalError(c, err, "apply payment callback")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// applyPayment stores the provider's view of a payment. A paid order is
// never downgraded.
func (h *Handler) applyPayment(c *gin.Context, order *models.Order, session *payment.Session) error {
	if order.Payment.Status == models.PaymentStatusPaid || session.Status == order.Payment.Status {
		return nil
	}

	updates := map[string]any{"payment_status": session.Status}
	if session.TransactionID != "" {
		updates["payment_transaction_id"] = session.TransactionID
	}
	if session.ID != "" {
		updates["payment_session_id"] = session.ID
	}
	if err := h.db(c).Model(order).Updates(updates).Error; err != nil {
		return err
	}

	order.Payment.Status = session.Status
	if session.TransactionID != "" {
		order.Payment.TransactionID = session.TransactionID
	}
	h.Log.Info("payment updated", "order_id", order.ID, "status", session.Status)
	h.publish(notify.EventOrderUpdated, gin.H{"order_id": order.ID, "payment_status": order.Payment.Status})
	return nil
}
