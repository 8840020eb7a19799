package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"shawarma-sheesh-api/models"
	"shawarma-sheesh-api/pricing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProductInput struct {
	NameEn            string         `json:"name_en" binding:"required"`
	NameAr            string         `json:"name_ar" binding:"required"`
	DescriptionEn     string         `json:"description_en"`
	DescriptionAr     string         `json:"description_ar"`
	CategoryID        uint           `json:"category_id" binding:"required"`
	BasePrice         float64        `json:"base_price" binding:"min=0"`
	HasTypeChoices    bool           `json:"has_type_choices"`
	HasProteinChoices bool           `json:"has_protein_choices"`
	Prices            pricing.Matrix `json:"prices"`
	Discount          float64        `json:"discount" binding:"min=0,max=100"`
	IsSpicy           bool           `json:"is_spicy"`
	InStock           *bool          `json:"in_stock"`
	AdditionIDs       []uint         `json:"addition_ids"`
	Image             string         `json:"image"`
}

type CategoryInput struct {
	NameEn    string `json:"name_en" binding:"required"`
	NameAr    string `json:"name_ar" binding:"required"`
	Image     string `json:"image"`
	SortOrder int    `json:"sort_order"`
}

type AdditionInput struct {
	NameEn string  `json:"name_en" binding:"required"`
	NameAr string  `json:"name_ar" binding:"required"`
	Price  float64 `json:"price" binding:"min=0"`
}

var errInvalidProduct = errors.New("invalid product")

// applyProductInput copies in onto p and loads the referenced additions.
// Validation failures are answered here and reported as errInvalidProduct.
func (h *Handler) applyProductInput(c *gin.Context, p *models.Product, in ProductInput) ([]models.Addition, error) {
	p.NameEn = in.NameEn
	p.NameAr = in.NameAr
	p.DescriptionEn = in.DescriptionEn
	p.DescriptionAr = in.DescriptionAr
	p.CategoryID = in.CategoryID
	p.BasePrice = in.BasePrice
	p.HasTypeChoices = in.HasTypeChoices
	p.HasProteinChoices = in.HasProteinChoices
	p.Prices = in.Prices
	p.Discount = in.Discount
	p.IsSpicy = in.IsSpicy
	p.Image = in.Image
	if in.InStock != nil {
		p.InStock = *in.InStock
	}

	if err := p.ValidatePrices(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, errInvalidProduct
	}

	var count int64
	if err := h.db(c).Model(&models.Category{}).Where("id = ?", in.CategoryID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return nil, errInvalidProduct
	}

	additions, missing, err := h.loadAdditions(c, in.AdditionIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown additions", "missing_additions": missing})
		return nil, errInvalidProduct
	}
	return additions, nil
}

// loadAdditions fetches additions by id and reports ids that do not exist.
func (h *Handler) loadAdditions(c *gin.Context, ids []uint) ([]models.Addition, []uint, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	var found []models.Addition
	if err := h.db(c).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, nil, err
	}
	byID := make(map[uint]models.Addition, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	var additions []models.Addition
	var missing []uint
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		additions = append(additions, a)
	}
	return additions, missing, nil
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var in ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{InStock: true}
	additions, err := h.applyProductInput(c, &product, in)
	if err != nil {
		if !errors.Is(err, errInvalidProduct) {
			h.internalError(c, err, "validate product")
		}
		return
	}
	product.Additions = additions

	if err := h.db(c).Omit("Additions.*").Create(&product).Error; err != nil {
		h.internalError(c, err, "create product")
		return
	}
	h.reload(c, &product, product.ID, "Category", "Additions")
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": product})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	if err := h.db(c).First(&product, id).Error; err != nil {
		h.notFoundOr(c, err, "Product")
		return
	}
	additions, err := h.applyProductInput(c, &product, in)
	if err != nil {
		if !errors.Is(err, errInvalidProduct) {
			h.internalError(c, err, "validate product")
		}
		return
	}

	err = h.db(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Additions", "Category").Save(&product).Error; err != nil {
			return err
		}
		assoc := tx.Model(&product).Omit("Additions.*").Association("Additions")
		if len(additions) == 0 {
			return assoc.Clear()
		}
		return assoc.Replace(additions)
	})
	if err != nil {
		h.internalError(c, err, "update product")
		return
	}
	h.reload(c, &product, product.ID, "Category", "Additions")
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

// UpdateProductStock toggles availability without touching the rest of the product
func (h *Handler) UpdateProductStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		InStock *bool `json:"in_stock" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.db(c).Model(&models.Product{}).Where("id = ?", id).Update("in_stock", *req.InStock)
	if res.Error != nil {
		h.internalError(c, res.Error, "update stock")
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated", "product_id": id, "in_stock": *req.InStock})
}

// DeleteProduct removes the product and any cart lines that point at it.
// Orders keep their snapshot.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var product models.Product
	if err := h.db(c).First(&product, id).Error; err != nil {
		h.notFoundOr(c, err, "Product")
		return
	}

	err := h.db(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM cart_item_additions WHERE cart_item_id IN (SELECT id FROM cart_items WHERE product_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&product).Association("Additions").Clear(); err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		h.internalError(c, err, "delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted", "product_id": id})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var in CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category := models.Category{NameEn: in.NameEn, NameAr: in.NameAr, Image: in.Image, SortOrder: in.SortOrder}
	if err := h.db(c).Create(&category).Error; err != nil {
		h.internalError(c, err, "create category")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": category})
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var category models.Category
	if err := h.db(c).First(&category, id).Error; err != nil {
		h.notFoundOr(c, err, "Category")
		return
	}
	category.NameEn, category.NameAr, category.Image, category.SortOrder = in.NameEn, in.NameAr, in.Image, in.SortOrder
	if err := h.db(c).Save(&category).Error; err != nil {
		h.internalError(c, err, "update category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": category})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var inUse int64
	if err := h.db(c).Model(&models.Product{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
		h.internalError(c, err, "count category products")
		return
	}
	if inUse > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Category still has %d product(s)", inUse)})
		return
	}

	res := h.db(c).Delete(&models.Category{}, id)
	if res.Error != nil {
		h.internalError(c, res.Error, "delete category")
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted", "category_id": id})
}

func (h *Handler) CreateAddition(c *gin.Context) {
	var in AdditionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	addition := models.Addition{NameEn: in.NameEn, NameAr: in.NameAr, Price: in.Price}
	if err := h.db(c).Create(&addition).Error; err != nil {
		h.internalError(c, err, "create addition")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Addition created", "addition": addition})
}

func (h *Handler) UpdateAddition(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in AdditionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var addition models.Addition
	if err := h.db(c).First(&addition, id).Error; err != nil {
		h.notFoundOr(c, err, "Addition")
		return
	}
	addition.NameEn, addition.NameAr, addition.Price = in.NameEn, in.NameAr, in.Price
	if err := h.db(c).Save(&addition).Error; err != nil {
		h.internalError(c, err, "update addition")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Addition updated", "addition": addition})
}

// DeleteAddition also detaches it from products and cart lines.
func (h *Handler) DeleteAddition(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var addition models.Addition
	if err := h.db(c).First(&addition, id).Error; err != nil {
		h.notFoundOr(c, err, "Addition")
		return
	}

	err := h.db(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_additions WHERE addition_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM cart_item_additions WHERE addition_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&addition).Error
	})
	if err != nil {
		h.internalError(c, err, "delete addition")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Addition deleted", "addition_id": id})
}
