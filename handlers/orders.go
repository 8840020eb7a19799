package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shawarma-sheesh-api/middleware"
	"shawarma-sheesh-api/models"
	"shawarma-sheesh-api/notify"
	"shawarma-sheesh-api/pricing"
	"shawarma-sheesh-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrAddressRequired = errors.New("address_id is required for delivery orders")
	ErrAddressNotFound = errors.New("shipping address not found")
	ErrLocationClosed  = errors.New("delivery is not available for this address")
)

// MissingProductsError lists requested ids that do not exist.
type MissingProductsError struct {
	ProductIDs  []uint
	AdditionIDs []uint
}

func (e *MissingProductsError) Error() string {
	var parts []string
	if len(e.ProductIDs) > 0 {
		parts = append(parts, fmt.Sprintf("products not found: %v", e.ProductIDs))
	}
	if len(e.AdditionIDs) > 0 {
		parts = append(parts, fmt.Sprintf("additions not found: %v", e.AdditionIDs))
	}
	return strings.Join(parts, "; ")
}

// SelectionError reports a line whose protein or type choice is missing or unknown.
type SelectionError struct {
	Product string
	Err     error
}

func (e *SelectionError) Error() string {
	return e.Product + ": " + e.Err.Error()
}

func (e *SelectionError) Unwrap() error { return e.Err }

type OutOfStockError struct {
	Products []string
}

func (e *OutOfStockError) Error() string {
	return "out of stock: " + strings.Join(e.Products, ", ")
}

// OrderItemInput is one requested line. Prices sent by clients are ignored.
type OrderItemInput struct {
	ProductID       uint   `json:"product_id" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1,max=99"`
	IsSpicy         bool   `json:"is_spicy"`
	AdditionIDs     []uint `json:"additions"`
	Notes           string `json:"notes" binding:"max=500"`
	SelectedProtein string `json:"selected_protein"`
	SelectedType    string `json:"selected_type"`
}

type CreateOrderRequest struct {
	Items         []OrderItemInput     `json:"items" binding:"required,min=1,dive"`
	DeliveryType  models.DeliveryType  `json:"delivery_type" binding:"required,oneof=delivery pickup"`
	AddressID     *uint                `json:"address_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required,oneof=card cliq"`
	Notes         string               `json:"notes" binding:"max=500"`
}

// buildOrder prices every line from the current product records and returns
// an unsaved order. It never trusts client prices.
func (h *Handler) buildOrder(c *gin.Context, userID uint, req CreateOrderRequest) (*models.Order, error) {
	products, additions, err := h.loadOrderCatalog(c, req.Items)
	if err != nil {
		return nil, err
	}

	var outOfStock []string
	items := make([]models.OrderItem, 0, len(req.Items))
	lines := make([]pricing.LineBreakdown, 0, len(req.Items))
	for _, in := range req.Items {
		product := products[in.ProductID]
		if !product.InStock {
			outOfStock = append(outOfStock, product.NameEn)
			continue
		}
		if err := pricing.CheckSelection(product.Variant(), in.SelectedProtein, in.SelectedType); err != nil {
			return nil, &SelectionError{Product: product.NameEn, Err: err}
		}
		if !product.HasProteinChoices {
			in.SelectedProtein = ""
		}
		if !product.HasTypeChoices {
			in.SelectedType = ""
		}

		var snapshot []models.OrderAddition
		var prices []float64
		for _, id := range uniqueIDs(in.AdditionIDs) {
			a := additions[id]
			snapshot = append(snapshot, models.OrderAddition{AdditionID: a.ID, NameEn: a.NameEn, NameAr: a.NameAr, Price: a.Price})
			prices = append(prices, a.Price)
		}

		line := pricing.RoundLine(pricing.PriceLine(product.Variant(), pricing.Selection{
			Protein:   in.SelectedProtein,
			Type:      in.SelectedType,
			Additions: prices,
			Quantity:  in.Quantity,
		}))
		lines = append(lines, line)
		items = append(items, models.OrderItem{
			ProductID:       product.ID,
			NameEn:          product.NameEn,
			NameAr:          product.NameAr,
			Quantity:        in.Quantity,
			IsSpicy:         in.IsSpicy,
			Notes:           in.Notes,
			SelectedProtein: in.SelectedProtein,
			SelectedType:    in.SelectedType,
			Additions:       snapshot,
			PriceAtPurchase: line.UnitPrice,
		})
	}
	if len(outOfStock) > 0 {
		return nil, &OutOfStockError{Products: outOfStock}
	}

	order := &models.Order{
		UserID:       userID,
		Status:       models.StatusProcessing,
		DeliveryType: req.DeliveryType,
		Payment: models.Payment{
			Method: req.PaymentMethod,
			Status: models.PaymentStatusPending,
		},
		Notes: req.Notes,
		Items: items,
	}

	deliveryCost := 0.0
	if req.DeliveryType == models.DeliveryTypeDelivery {
		address, err := h.orderAddress(c, userID, req.AddressID)
		if err != nil {
			return nil, err
		}
		order.AddressID = &address.ID
		order.AddressLine = formatAddress(address)
		deliveryCost = address.Location.DeliveryCost
	}

	totals := pricing.Aggregate(lines, deliveryCost)
	order.Subtotal = pricing.Round(totals.Subtotal)
	order.DeliveryCost = pricing.Round(totals.DeliveryCost)
	order.TotalPrice = pricing.Round(totals.Total)
	return order, nil
}

// loadOrderCatalog fetches every referenced product and addition in two
// queries and reports all missing ids at once.
func (h *Handler) loadOrderCatalog(c *gin.Context, items []OrderItemInput) (map[uint]models.Product, map[uint]models.Addition, error) {
	var productIDs, additionIDs []uint
	for _, in := range items {
		productIDs = append(productIDs, in.ProductID)
		additionIDs = append(additionIDs, in.AdditionIDs...)
	}
	productIDs = uniqueIDs(productIDs)
	additionIDs = uniqueIDs(additionIDs)

	var productRows []models.Product
	if err := h.db(c).Where("id IN ?", productIDs).Find(&productRows).Error; err != nil {
		return nil, nil, err
	}
	products := make(map[uint]models.Product, len(productRows))
	for _, p := range productRows {
		products[p.ID] = p
	}

	additions := make(map[uint]models.Addition)
	if len(additionIDs) > 0 {
		var rows []models.Addition
		if err := h.db(c).Where("id IN ?", additionIDs).Find(&rows).Error; err != nil {
			return nil, nil, err
		}
		for _, a := range rows {
			additions[a.ID] = a
		}
	}

	missing := &MissingProductsError{}
	for _, id := range productIDs {
		if _, ok := products[id]; !ok {
			missing.ProductIDs = append(missing.ProductIDs, id)
		}
	}
	for _, id := range additionIDs {
		if _, ok := additions[id]; !ok {
			missing.AdditionIDs = append(missing.AdditionIDs, id)
		}
	}
	if len(missing.ProductIDs) > 0 || len(missing.AdditionIDs) > 0 {
		return nil, nil, missing
	}
	return products, additions, nil
}

func (h *Handler) orderAddress(c *gin.Context, userID uint, addressID *uint) (*models.Address, error) {
	if addressID == nil || *addressID == 0 {
		return nil, ErrAddressRequired
	}
	var address models.Address
	err := h.db(c).Preload("Location").
		Where("user_id = ?", userID).
		First(&address, *addressID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	if address.Location == nil || !address.Location.Active {
		return nil, ErrLocationClosed
	}
	return &address, nil
}

func formatAddress(a *models.Address) string {
	parts := []string{a.Street}
	if a.Building != "" {
		parts = append(parts, a.Building)
	}
	if a.Details != "" {
		parts = append(parts, a.Details)
	}
	line := strings.Join(parts, ", ")
	if a.Location != nil {
		line += " - " + a.Location.NameEn
	}
	return line
}

// orderError answers a buildOrder failure with the matching status.
func (h *Handler) orderError(c *gin.Context, err error) {
	var missing *MissingProductsError
	var outOfStock *OutOfStockError
	var selection *SelectionError
	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             err.Error(),
			"missing_products":  missing.ProductIDs,
			"missing_additions": missing.AdditionIDs,
		})
	case errors.As(err, &outOfStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "out_of_stock": outOfStock.Products})
	case errors.As(err, &selection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAddressRequired),
		errors.Is(err, ErrAddressNotFound),
		errors.Is(err, ErrLocationClosed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.internalError(c, err, "build order")
	}
}

// PlaceOrder creates an order from the submitted lines and clears the cart
func (h *Handler) PlaceOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.buildOrder(c, userID, req)
	if err != nil {
		h.orderError(c, err)
		return
	}

	now := time.Now()
	seq, err := h.Sequencer.Next(c.Request.Context(), now)
	if err != nil {
		h.internalError(c, err, "next order number")
		return
	}
	order.SequenceNumber = seq
	order.OrderDay = now.Format(time.DateOnly)

	err = h.db(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Address", "User").Create(order).Error; err != nil {
			return err
		}
		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusProcessing,
			ChangedBy: userID,
			Note:      "Order placed by customer",
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		return clearCart(tx, userID)
	})
	if err != nil {
		h.internalError(c, err, "place order")
		return
	}

	h.reload(c, order, order.ID, "Items", "Address.Location", "StatusHistory")
	h.publish(notify.EventNewOrder, order)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	var orders []models.Order
	err := h.db(c).Preload("Items").
		Where("user_id = ?", middleware.GetUserID(c)).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		h.internalError(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// loadOwnOrder loads an order and checks the caller placed it.
func (h *Handler) loadOwnOrder(c *gin.Context, id uint, preload ...string) (*models.Order, bool) {
	query := h.db(c)
	for _, p := range preload {
		query = query.Preload(p)
	}
	var order models.Order
	if err := query.First(&order, id).Error; err != nil {
		h.notFoundOr(c, err, "Order")
		return nil, false
	}
	if order.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return nil, false
	}
	return &order, true
}

// GetOrderDetail returns a single order's full detail with history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, ok := h.loadOwnOrder(c, id, "Items", "Address.Location", "StatusHistory")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":      order,
		"can_cancel": statemachine.CanTransition(order.Status, models.StatusCancelled, statemachine.ActorCustomer) == nil,
	})
}

// CancelOrder cancels an order the kitchen has not accepted yet
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, ok := h.loadOwnOrder(c, id)
	if !ok {
		return
	}

	if err := statemachine.CanTransition(order.Status, models.StatusCancelled, statemachine.ActorCustomer); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         "Cannot cancel order",
			"reason":        err.Error(),
			"current_state": order.Status,
		})
		return
	}

	if err := h.changeStatus(c, order, models.StatusCancelled, middleware.GetUserID(c), "Order cancelled by customer"); err != nil {
		h.internalError(c, err, "cancel order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order_id": order.ID})
}

// changeStatus updates the status, records history and notifies staff.
func (h *Handler) changeStatus(c *gin.Context, order *models.Order, to models.OrderStatus, by uint, note string) error {
	from := order.Status
	err := h.db(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(order).Update("status", to).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  by,
			Note:       note,
		}).Error
	})
	if err != nil {
		return err
	}
	order.Status = to
	h.publish(notify.EventOrderUpdated, gin.H{"order_id": order.ID, "from": from, "to": to, "payment_status": order.Payment.Status})
	return nil
}
