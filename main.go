package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shawarma-sheesh-api/cache"
	"shawarma-sheesh-api/config"
	"shawarma-sheesh-api/handlers"
	"shawarma-sheesh-api/logger"
	"shawarma-sheesh-api/mailer"
	"shawarma-sheesh-api/middleware"
	"shawarma-sheesh-api/models"
	"shawarma-sheesh-api/notify"
	"shawarma-sheesh-api/payment"
	"shawarma-sheesh-api/routes"
	"shawarma-sheesh-api/sms"
	"shawarma-sheesh-api/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg, envErr := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if envErr != nil {
		log.Warn("no .env file loaded, using environment", "error", envErr)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelExporter, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracing setup failed", "error", err)
		os.Exit(1)
	}

	db, err := config.OpenDB(cfg.DatabasePath)
	if err != nil {
		log.Error("database unavailable", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	log.Info("database connected and migrated", "path", cfg.DatabasePath)

	rdb, err := config.OpenRedis(ctx, cfg)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	if err := bootstrapAdmin(db, cfg); err != nil {
		log.Error("bootstrap admin", "error", err)
		os.Exit(1)
	}

	hub := notify.NewHub(logger.WithComponent(log, "notify"))
	go hub.Run(ctx)

	h := &handlers.Handler{
		DB:        db,
		Log:       logger.WithComponent(log, "http"),
		Tokens:    middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		OTPs:      cache.NewOTPStore(rdb),
		Sequencer: cache.NewSequencer(rdb),
		SMS:       newSMSSender(cfg, log),
		Payments:  payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
		Notifier:  hub,
		Mailer:    newMailer(cfg, log),
		Settings: handlers.Settings{
			OTPTTL:            cfg.OTPTTL,
			PaymentCurrency:   cfg.PaymentCurrency,
			PaymentMinorUnits: cfg.PaymentMinorUnits,
			PaymentSuccessURL: cfg.PaymentSuccessURL,
			PaymentCancelURL:  cfg.PaymentCancelURL,
			HREmail:           cfg.HREmail,
		},
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger.WithComponent(log, "access")))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	routes.SetupRoutes(r, h, routes.OTPLimits{
		Limiter:     cache.NewRateLimiter(rdb),
		MaxRequests: cfg.OTPMaxRequests,
		Window:      cfg.OTPWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           telemetry.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("flush traces", "error", err)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func newSMSSender(cfg *config.Config, log *slog.Logger) sms.Sender {
	if cfg.SMSAPIURL == "" {
		log.Warn("SMS_API_URL not set, verification codes will only be logged")
		return sms.NewLogSender(logger.WithComponent(log, "sms"))
	}
	return sms.NewHTTPSender(cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSenderID)
}

func newMailer(cfg *config.Config, log *slog.Logger) mailer.Mailer {
	if cfg.SMTPHost != "" {
		m, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		if err == nil {
			return m
		}
		log.Error("smtp mailer disabled", "error", err)
	}
	return mailer.NewNopMailer(logger.WithComponent(log, "mailer"))
}

// bootstrapAdmin creates the first admin account when ADMIN_USERNAME and
// ADMIN_PASSWORD are set and no admin exists yet.
func bootstrapAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	var admins int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}
	_, err := handlers.CreateStaff(db, handlers.CreateStaffRequest{
		Name:     "Administrator",
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, handlers.ErrUsernameTaken) {
		return nil
	}
	return err
}
