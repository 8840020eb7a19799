package handlers

import (
	"net/http"

	"shawarma-sheesh-api/middleware"
	"shawarma-sheesh-api/models"

	"github.com/gin-gonic/gin"
)

type AddressInput struct {
	LocationID uint   `json:"location_id" binding:"required"`
	Street     string `json:"street" binding:"required,max=200"`
	Building   string `json:"building" binding:"max=100"`
	Details    string `json:"details" binding:"max=500"`
}

func (h *Handler) ListAddresses(c *gin.Context) {
	var addresses []models.Address
	err := h.db(c).Preload("Location").
		Where("user_id = ?", middleware.GetUserID(c)).
		Order("created_at desc").
		Find(&addresses).Error
	if err != nil {
		h.internalError(c, err, "list addresses")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(addresses), "addresses": addresses})
}

func (h *Handler) CreateAddress(c *gin.Context) {
	var in AddressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var loc models.ShippingLocation
	if err := h.db(c).Where("active = ?", true).First(&loc, in.LocationID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping location not found"})
		return
	}

	address := models.Address{
		UserID:     middleware.GetUserID(c),
		LocationID: loc.ID,
		Street:     in.Street,
		Building:   in.Building,
		Details:    in.Details,
	}
	if err := h.db(c).Omit("Location").Create(&address).Error; err != nil {
		h.internalError(c, err, "create address")
		return
	}
	address.Location = &loc
	c.JSON(http.StatusCreated, gin.H{"message": "Address saved", "address": address})
}

// DeleteAddress removes one of the caller's addresses. Orders keep their
// reference to the id.
func (h *Handler) DeleteAddress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db(c).Where("user_id = ?", middleware.GetUserID(c)).Delete(&models.Address{}, id)
	if res.Error != nil {
		h.internalError(c, res.Error, "delete address")
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted", "address_id": id})
}
