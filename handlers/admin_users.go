package handlers

import (
	"errors"
	"net/http"
	"strings"

	"shawarma-sheesh-api/middleware"
	"shawarma-sheesh-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateStaffRequest struct {
	Name     string          `json:"name" binding:"required,max=100"`
	Username string          `json:"username" binding:"required,min=3,max=50,alphanum"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     models.UserRole `json:"role" binding:"required,oneof=employee admin"`
}

// AdminGetAllUsers returns all users, optionally filtered by role
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	var users []models.User
	query := h.db(c)
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Order("id").Find(&users).Error; err != nil {
		h.internalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// CreateStaffUser adds an employee or admin account
func (h *Handler) CreateStaffUser(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := CreateStaff(h.db(c), req)
	if errors.Is(err, ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already registered"})
		return
	}
	if err != nil {
		h.internalError(c, err, "create staff user")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Staff account created", "user": user})
}

var ErrUsernameTaken = errors.New("username already registered")

// CreateStaff stores a staff account with a bcrypt password hash. Also used
// to bootstrap the first admin at startup.
func CreateStaff(db *gorm.DB, req CreateStaffRequest) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         req.Name,
		Username:     &username,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if id == middleware.GetUserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}

	var user models.User
	if err := h.db(c).First(&user, id).Error; err != nil {
		h.notFoundOr(c, err, "User")
		return
	}

	// Orders stay as history; they carry their own address snapshot.
	err := h.db(c).Transaction(func(tx *gorm.DB) error {
		if err := clearCart(tx, id); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Cart{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Address{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		h.internalError(c, err, "delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted", "user_id": id})
}
