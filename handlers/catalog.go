package handlers

import (
	"net/http"
	"strconv"

	"shawarma-sheesh-api/models"

	"github.com/gin-gonic/gin"
)

// ListProducts returns the menu, optionally filtered
func (h *Handler) ListProducts(c *gin.Context) {
	var products []models.Product
	query := h.db(c).Preload("Category").Preload("Additions")

	if category := c.Query("category"); category != "" {
		id, err := strconv.ParseUint(category, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		query = query.Where("category_id = ?", id)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name_en LIKE ? OR name_ar LIKE ?", like, like)
	}
	if c.Query("inStock") == "true" {
		query = query.Where("in_stock = ?", true)
	}

	if err := query.Order("id").Find(&products).Error; err != nil {
		h.internalError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var product models.Product
	if err := h.db(c).Preload("Category").Preload("Additions").First(&product, id).Error; err != nil {
		h.notFoundOr(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *Handler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.db(c).Order("sort_order, id").Find(&categories).Error; err != nil {
		h.internalError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(categories), "categories": categories})
}

func (h *Handler) ListAdditions(c *gin.Context) {
	var additions []models.Addition
	if err := h.db(c).Order("id").Find(&additions).Error; err != nil {
		h.internalError(c, err, "list additions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(additions), "additions": additions})
}
