package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"shawarma-sheesh-api/mailer"
	"shawarma-sheesh-api/middleware"
	"shawarma-sheesh-api/notify"
	"shawarma-sheesh-api/payment"
	"shawarma-sheesh-api/sms"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OTPStore interface {
	Save(ctx context.Context, phone, codeHash string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (string, error)
	RecordFailure(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error
}

type Sequencer interface {
	Next(ctx context.Context, day time.Time) (int, error)
}

type Notifier interface {
	Publish(ev notify.Event)
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// Settings are the config values handlers read at request time.
type Settings struct {
	OTPTTL            time.Duration
	PaymentCurrency   string
	PaymentMinorUnits int64
	PaymentSuccessURL string
	PaymentCancelURL  string
	HREmail           string
}

// Handler carries every dependency the HTTP layer needs. There is no
// package-level state; routes bind methods of one Handler.
type Handler struct {
	DB        *gorm.DB
	Log       *slog.Logger
	Tokens    *middleware.TokenIssuer
	OTPs      OTPStore
	Sequencer Sequencer
	SMS       sms.Sender
	Payments  payment.Gateway
	Notifier  Notifier
	Mailer    mailer.Mailer
	Settings  Settings
}

// internalError logs err and answers with a fixed message.
func (h *Handler) internalError(c *gin.Context, err error, msg string) {
	c.Error(err)
	h.Log.Error(msg,
		"error", err,
		"method", c.Request.Method,
		"path", c.FullPath(),
		"request_id", c.GetString("requestID"),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// notFoundOr answers 404 for a missing row and 500 for anything else.
func (h *Handler) notFoundOr(c *gin.Context, err error, what string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	h.internalError(c, err, "load "+what)
}

// reload refreshes a row after a committed write so the response carries its
// relations. The write already succeeded, so a failure is logged and dest
// keeps what the caller had.
func (h *Handler) reload(c *gin.Context, dest any, id uint, preload ...string) bool {
	query := h.db(c)
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(dest, id).Error; err != nil {
		h.Log.Error("reload after write",
			"error", err,
			"id", id,
			"path", c.FullPath(),
			"request_id", c.GetString("requestID"),
		)
		return false
	}
	return true
}

func (h *Handler) db(c *gin.Context) *gorm.DB {
	return h.DB.WithContext(c.Request.Context())
}

func (h *Handler) publish(event string, data any) {
	if h.Notifier == nil {
		return
	}
	h.Notifier.Publish(notify.Event{Type: event, Data: data})
}

// paramID parses a numeric path parameter, answering 400 when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
