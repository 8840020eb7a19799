package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"shawarma-sheesh-api/middleware"
	"shawarma-sheesh-api/models"
	"shawarma-sheesh-api/pricing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxLineQuantity matches the max=99 bound on every quantity binding.
const maxLineQuantity = 99

var errLineQuantity = fmt.Errorf("a cart line holds at most %d items", maxLineQuantity)

type CartItemInput struct {
	ProductID       uint   `json:"product_id" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1,max=99"`
	IsSpicy         bool   `json:"is_spicy"`
	AdditionIDs     []uint `json:"additions"`
	Notes           string `json:"notes" binding:"max=500"`
	SelectedProtein string `json:"selected_protein"`
	SelectedType    string `json:"selected_type"`
}

type CartItemUpdate struct {
	Quantity int     `json:"quantity" binding:"required,min=1,max=99"`
	IsSpicy  *bool   `json:"is_spicy"`
	Notes    *string `json:"notes" binding:"omitempty,max=500"`
}

// CartLine is a cart item with its server-side price.
type CartLine struct {
	models.CartItem
	Pricing pricing.LineBreakdown `json:"pricing"`
}

type CartView struct {
	ID       uint       `json:"id"`
	Items    []CartLine `json:"items"`
	Count    int        `json:"count"`
	Subtotal float64    `json:"subtotal"`
}

func priceCartItem(item models.CartItem) pricing.LineBreakdown {
	return pricing.RoundLine(pricing.PriceLine(item.Product.Variant(), pricing.Selection{
		Protein:   item.SelectedProtein,
		Type:      item.SelectedType,
		Additions: models.AdditionPrices(item.Additions),
		Quantity:  item.Quantity,
	}))
}

// loadCart returns the user's cart with products and additions, or a zero
// Cart when none exists yet.
func (h *Handler) loadCart(c *gin.Context, userID uint) (models.Cart, error) {
	var cart models.Cart
	err := h.db(c).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		Preload("Items.Additions").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Cart{UserID: userID}, nil
	}
	return cart, err
}

func (h *Handler) cartView(c *gin.Context, userID uint) (CartView, error) {
	cart, err := h.loadCart(c, userID)
	if err != nil {
		return CartView{}, err
	}

	view := CartView{ID: cart.ID, Items: []CartLine{}}
	var lines []pricing.LineBreakdown
	for _, item := range cart.Items {
		// product deleted since the line was added
		if item.Product.ID == 0 {
			continue
		}
		line := priceCartItem(item)
		lines = append(lines, line)
		view.Items = append(view.Items, CartLine{CartItem: item, Pricing: line})
		view.Count += item.Quantity
	}
	view.Subtotal = pricing.Round(pricing.Aggregate(lines, 0).Subtotal)
	return view, nil
}

func (h *Handler) respondCart(c *gin.Context, status int, message string) {
	view, err := h.cartView(c, middleware.GetUserID(c))
	if err != nil {
		h.internalError(c, err, "load cart")
		return
	}
	body := gin.H{"cart": view}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// GetCart returns the caller's cart priced by the server
func (h *Handler) GetCart(c *gin.Context) {
	h.respondCart(c, http.StatusOK, "")
}

// AddCartItem adds a configured product, merging with an identical line
func (h *Handler) AddCartItem(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var in CartItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	if err := h.db(c).First(&product, in.ProductID).Error; err != nil {
		h.notFoundOr(c, err, "Product")
		return
	}
	if !product.InStock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product '" + product.NameEn + "' is out of stock"})
		return
	}
	if err := pricing.CheckSelection(product.Variant(), in.SelectedProtein, in.SelectedType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !product.HasProteinChoices {
		in.SelectedProtein = ""
	}
	if !product.HasTypeChoices {
		in.SelectedType = ""
	}

	additions, missing, err := h.loadAdditions(c, uniqueIDs(in.AdditionIDs))
	if err != nil {
		h.internalError(c, err, "load additions")
		return
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown additions", "missing_additions": missing})
		return
	}

	err = h.db(c).Transaction(func(tx *gorm.DB) error {
		cart := models.Cart{UserID: userID}
		if err := tx.Where("user_id = ?", userID).FirstOrCreate(&cart).Error; err != nil {
			return err
		}

		var existing []models.CartItem
		if err := tx.Preload("Additions").
			Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).
			Find(&existing).Error; err != nil {
			return err
		}
		for _, item := range existing {
			if sameConfiguration(item, in, additions) {
				if item.Quantity+in.Quantity > maxLineQuantity {
					return errLineQuantity
				}
				return tx.Model(&item).Update("quantity", item.Quantity+in.Quantity).Error
			}
		}

		item := models.CartItem{
			CartID:          cart.ID,
			ProductID:       product.ID,
			Quantity:        in.Quantity,
			IsSpicy:         in.IsSpicy,
			Additions:       additions,
			Notes:           in.Notes,
			SelectedProtein: in.SelectedProtein,
			SelectedType:    in.SelectedType,
		}
		return tx.Omit("Additions.*", "Product").Create(&item).Error
	})
	if errors.Is(err, errLineQuantity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, err, "add cart item")
		return
	}

	h.respondCart(c, http.StatusCreated, "Item added to cart")
}

func sameConfiguration(item models.CartItem, in CartItemInput, additions []models.Addition) bool {
	if item.IsSpicy != in.IsSpicy || item.Notes != in.Notes ||
		item.SelectedProtein != in.SelectedProtein || item.SelectedType != in.SelectedType ||
		len(item.Additions) != len(additions) {
		return false
	}
	have := make([]uint, len(item.Additions))
	for i, a := range item.Additions {
		have[i] = a.ID
	}
	want := make([]uint, len(additions))
	for i, a := range additions {
		want[i] = a.ID
	}
	slices.Sort(have)
	slices.Sort(want)
	return slices.Equal(have, want)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// findCartItem loads an item only if it belongs to the caller's cart.
func (h *Handler) findCartItem(c *gin.Context) (*models.CartItem, bool) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return nil, false
	}
	var item models.CartItem
	err := h.db(c).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, middleware.GetUserID(c)).
		First(&item).Error
	if err != nil {
		h.notFoundOr(c, err, "Cart item")
		return nil, false
	}
	return &item, true
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	item, ok := h.findCartItem(c)
	if !ok {
		return
	}
	var in CartItemUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{"quantity": in.Quantity}
	if in.IsSpicy != nil {
		updates["is_spicy"] = *in.IsSpicy
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if err := h.db(c).Model(item).Updates(updates).Error; err != nil {
		h.internalError(c, err, "update cart item")
		return
	}
	h.respondCart(c, http.StatusOK, "Cart item updated")
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	item, ok := h.findCartItem(c)
	if !ok {
		return
	}
	err := h.db(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(item).Association("Additions").Clear(); err != nil {
			return err
		}
		return tx.Delete(item).Error
	})
	if err != nil {
		h.internalError(c, err, "remove cart item")
		return
	}
	h.respondCart(c, http.StatusOK, "Item removed from cart")
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := clearCart(h.db(c), middleware.GetUserID(c)); err != nil {
		h.internalError(c, err, "clear cart")
		return
	}
	h.respondCart(c, http.StatusOK, "Cart cleared")
}

// clearCart deletes every line of the user's cart, keeping the cart row.
func clearCart(db *gorm.DB, userID uint) error {
	items := db.Model(&models.CartItem{}).Select("cart_items.id").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID)

	if err := db.Exec("DELETE FROM cart_item_additions WHERE cart_item_id IN (?)", items).Error; err != nil {
		return err
	}
	return db.Where("cart_id IN (?)", db.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&models.CartItem{}).Error
}
