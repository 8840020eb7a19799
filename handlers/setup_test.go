package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"shawarma-sheesh-api/cache"
	"shawarma-sheesh-api/config"
	"shawarma-sheesh-api/handlers"
	"shawarma-sheesh-api/logger"
	"shawarma-sheesh-api/middleware"
	"shawarma-sheesh-api/models"
	"shawarma-sheesh-api/notify"
	"shawarma-sheesh-api/payment"
	"shawarma-sheesh-api/pricing"
	"shawarma-sheesh-api/routes"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type obj = map[string]any

type fakeSMS struct {
	mu   sync.Mutex
	last map[string]string
}

var codePattern = regexp.MustCompile(`\d{6}`)

func (f *fakeSMS) Send(_ context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		f.last = map[string]string{}
	}
	f.last[phone] = message
	return nil
}

func (f *fakeSMS) code(phone string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return codePattern.FindString(f.last[phone])
}

type fakeGateway struct {
	mu       sync.Mutex
	created  []payment.SessionRequest
	sessions map[string]*payment.Session
	callback *payment.Session
	err      error
}

func (f *fakeGateway) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	s := &payment.Session{
		ID:      fmt.Sprintf("cs_test_%d", len(f.created)),
		URL:     "https://checkout.example/pay",
		OrderID: req.OrderID,
		Status:  models.PaymentStatusPending,
	}
	if f.sessions == nil {
		f.sessions = map[string]*payment.Session{}
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeGateway) GetSession(_ context.Context, id string) (*payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no session %s", id)
	}
	return s, nil
}

func (f *fakeGateway) ParseCallback(_ []byte, signature string) (*payment.Session, error) {
	if signature != "valid" {
		return nil, fmt.Errorf("bad signature")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.callback, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakeNotifier) Publish(ev notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeNotifier) ServeWS(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusSwitchingProtocols)
}

func (f *fakeNotifier) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	sent chan sentMail
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.sent <- sentMail{To: to, Subject: subject, Body: body}
	return nil
}

type testApp struct {
	router   *gin.Engine
	handler  *handlers.Handler
	db       *gorm.DB
	redis    *miniredis.Miniredis
	sms      *fakeSMS
	payments *fakeGateway
	notifier *fakeNotifier
	mailer   *fakeMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := config.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	app := &testApp{
		db:       db,
		redis:    mr,
		sms:      &fakeSMS{},
		payments: &fakeGateway{},
		notifier: &fakeNotifier{},
		mailer:   &fakeMailer{sent: make(chan sentMail, 4)},
	}
	app.handler = &handlers.Handler{
		DB:        db,
		Log:       logger.Discard(),
		Tokens:    middleware.NewTokenIssuer([]byte("test-secret"), time.Hour),
		OTPs:      cache.NewOTPStore(rdb),
		Sequencer: cache.NewSequencer(rdb),
		SMS:       app.sms,
		Payments:  app.payments,
		Notifier:  app.notifier,
		Mailer:    app.mailer,
		Settings: handlers.Settings{
			OTPTTL:            5 * time.Minute,
			PaymentCurrency:   "jod",
			PaymentMinorUnits: 1000,
			PaymentSuccessURL: "https://shop.example/ok",
			PaymentCancelURL:  "https://shop.example/cancel",
			HREmail:           "hr@shawarmasheesh.com",
		},
	}

	app.router = gin.New()
	routes.SetupRoutes(app.router, app.handler, routes.OTPLimits{
		Limiter:     cache.NewRateLimiter(rdb),
		MaxRequests: 3,
		Window:      15 * time.Minute,
	})
	return app
}

// do sends a JSON request and returns the recorder.
func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testApp) user(t *testing.T, role models.UserRole, ident string) (*models.User, string) {
	t.Helper()
	u := &models.User{Name: ident, Role: role}
	if role == models.RoleUser {
		u.Phone = &ident
	} else {
		u.Username = &ident
	}
	require.NoError(t, a.db.Create(u).Error)
	token, err := a.handler.Tokens.Generate(u)
	require.NoError(t, err)
	return u, token
}

type catalog struct {
	category  models.Category
	shawarma  models.Product // both choices, 20% off
	fries     models.Product // no choices
	soldOut   models.Product
	garlic    models.Addition
	cheese    models.Addition
	location  models.ShippingLocation
	addressOf func(userID uint) models.Address
}

func (a *testApp) seed(t *testing.T) *catalog {
	t.Helper()
	c := &catalog{}
	c.category = models.Category{NameEn: "Shawarma", NameAr: "شاورما"}
	require.NoError(t, a.db.Create(&c.category).Error)

	c.garlic = models.Addition{NameEn: "Garlic", NameAr: "ثوم", Price: 2}
	c.cheese = models.Addition{NameEn: "Cheese", NameAr: "جبنة", Price: 3}
	require.NoError(t, a.db.Create(&c.garlic).Error)
	require.NoError(t, a.db.Create(&c.cheese).Error)

	prices := pricing.Matrix{}
	prices.SetNested(pricing.ProteinChicken, pricing.TypeSandwich, 10)
	prices.SetNested(pricing.ProteinChicken, pricing.TypeMeal, 12)
	prices.SetNested(pricing.ProteinMeat, pricing.TypeSandwich, 11)
	prices.SetNested(pricing.ProteinMeat, pricing.TypeMeal, 14)
	c.shawarma = models.Product{
		NameEn: "Shawarma", NameAr: "شاورما", CategoryID: c.category.ID,
		BasePrice: 9, HasTypeChoices: true, HasProteinChoices: true, Prices: prices,
		Discount: 20, InStock: true, Additions: []models.Addition{c.garlic, c.cheese},
	}
	c.fries = models.Product{NameEn: "Fries", NameAr: "بطاطا", CategoryID: c.category.ID, BasePrice: 1.75, InStock: true}
	c.soldOut = models.Product{NameEn: "Falafel", NameAr: "فلافل", CategoryID: c.category.ID, BasePrice: 1}
	for _, p := range []*models.Product{&c.shawarma, &c.fries, &c.soldOut} {
		require.NoError(t, a.db.Omit("Additions.*").Create(p).Error)
	}

	c.location = models.ShippingLocation{NameEn: "Abdoun", NameAr: "عبدون", DeliveryCost: 1.5, Active: true}
	require.NoError(t, a.db.Create(&c.location).Error)

	c.addressOf = func(userID uint) models.Address {
		addr := models.Address{UserID: userID, LocationID: c.location.ID, Street: "Main St", Building: "12"}
		require.NoError(t, a.db.Create(&addr).Error)
		return addr
	}
	return c
}
