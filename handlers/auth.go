package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"shawarma-sheesh-api/cache"
	"shawarma-sheesh-api/middleware"
	"shawarma-sheesh-api/models"
	"shawarma-sheesh-api/sms"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type OTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type OTPVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
	Name  string `json:"name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestOTP texts a one-time login code to the given phone
func (h *Handler) RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	phone, ok := sms.NormalizePhone(req.Phone)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	code, err := generateCode()
	if err != nil {
		h.internalError(c, err, "generate otp")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		h.internalError(c, err, "hash otp")
		return
	}

	ctx := c.Request.Context()
	if err := h.OTPs.Save(ctx, phone, string(hash), h.Settings.OTPTTL); err != nil {
		h.internalError(c, err, "store otp")
		return
	}

	msg := fmt.Sprintf("Your Shawarma Sheesh verification code is %s", code)
	if err := h.SMS.Send(ctx, phone, msg); err != nil {
		h.Log.Error("send otp sms", "phone", phone, "error", err)
		_ = h.OTPs.Delete(ctx, phone)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not send verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Verification code sent",
		"expires_in": int(h.Settings.OTPTTL.Seconds()),
	})
}

// VerifyOTP exchanges a valid code for a token, creating the customer on first login
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	phone, ok := sms.NormalizePhone(req.Phone)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	ctx := c.Request.Context()
	hash, err := h.OTPs.Get(ctx, phone)
	if errors.Is(err, cache.ErrOTPNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Code expired or not requested"})
		return
	}
	if err != nil {
		h.internalError(c, err, "load otp")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Code)) != nil {
		left, err := h.OTPs.RecordFailure(ctx, phone)
		if errors.Is(err, cache.ErrOTPNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Code expired or not requested"})
			return
		}
		if err != nil {
			h.internalError(c, err, "record otp failure")
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid code", "attempts_left": left})
		return
	}
	if err := h.OTPs.Delete(ctx, phone); err != nil {
		h.Log.Warn("delete used otp", "phone", phone, "error", err)
	}

	var user models.User
	isNew := false
	err = h.db(c).Where("phone = ?", phone).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Name: strings.TrimSpace(req.Name), Phone: &phone, Role: models.RoleUser}
		if err := h.db(c).Create(&user).Error; err != nil {
			h.internalError(c, err, "create customer")
			return
		}
		isNew = true
	case err != nil:
		h.internalError(c, err, "load customer")
		return
	}

	h.respondWithToken(c, &user, gin.H{"is_new": isNew})
}

// Login authenticates staff by username and password
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db(c).Where("username = ?", strings.ToLower(strings.TrimSpace(req.Username))).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.internalError(c, err, "load staff user")
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	h.respondWithToken(c, &user, nil)
}

func (h *Handler) respondWithToken(c *gin.Context, user *models.User, extra gin.H) {
	token, err := h.Tokens.Generate(user)
	if err != nil {
		h.internalError(c, err, "sign token")
		return
	}
	body := gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	name := strings.TrimSpace(req.Name)
	if err := h.db(c).Model(user).Update("name", name).Error; err != nil {
		h.internalError(c, err, "update profile")
		return
	}
	user.Name = name
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}
