package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"shawarma-sheesh-api/cache"
	"shawarma-sheesh-api/config"
	"shawarma-sheesh-api/logger"
	"shawarma-sheesh-api/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	phone := "0790000001"
	user := &models.User{Name: "Test", Role: role, Phone: &phone}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newRouter(issuer *TokenIssuer, db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(issuer, db), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "role": GetRole(c)})
	})
	r.GET("/staff", AuthRequired(issuer, db), StaffRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)
	token, err := issuer.Generate(&models.User{ID: 9, Role: models.RoleAdmin})
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = NewTokenIssuer([]byte("other"), time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), -time.Minute)
	token, err := issuer.Generate(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.Error(t, err)
}

func TestAuthRequired(t *testing.T) {
	db := setupDB(t)
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)
	r := newRouter(issuer, db)
	user := createUser(t, db, models.RoleUser)
	token, err := issuer.Generate(user)
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("header token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			ID   uint   `json:"id"`
			Role string `json:"role"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, user.ID, body.ID)
		assert.Equal(t, "user", body.Role)
	})

	t.Run("query token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("customer is not staff", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		require.NoError(t, db.Delete(&models.User{}, user.ID).Error)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthRequired_RoleComesFromDatabase(t *testing.T) {
	db := setupDB(t)
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)
	r := newRouter(issuer, db)

	employee := createUser(t, db, models.RoleEmployee)
	token, err := issuer.Generate(employee)
	require.NoError(t, err)

	require.NoError(t, db.Model(employee).Update("role", models.RoleUser).Error)

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimit_PhoneKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := cache.NewRateLimiter(client)

	var seen []string
	r := gin.New()
	r.POST("/otp", RateLimit(limiter, 2, time.Minute, PhoneKey("otp:")), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		seen = append(seen, string(body))
		c.Status(http.StatusOK)
	})

	send := func(phone string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		body := `{"phone":"` + phone + `"}`
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/otp", bytes.NewBufferString(body)))
		return w
	}

	assert.Equal(t, http.StatusOK, send("0790000000").Code)
	assert.Equal(t, http.StatusOK, send("0790000000").Code)

	w := send("0790000000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// formatting does not open a new bucket
	assert.Equal(t, http.StatusTooManyRequests, send("079-000 0000").Code)

	assert.Equal(t, http.StatusOK, send("0781111111").Code)
	assert.Len(t, seen, 3)
	assert.Equal(t, `{"phone":"0790000000"}`, seen[0])
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (bool, time.Duration, error) {
	return false, 0, assert.AnError
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit(failingLimiter{}, 1, time.Minute, IPKey("ip:")), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(logger.New(logger.Config{Output: &buf})))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"path":"/ping"`)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
