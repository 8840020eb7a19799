package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	DatabasePath string

	JWTSecret []byte
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTPTTL         time.Duration
	OTPMaxRequests int
	OTPWindow      time.Duration

	SMSAPIURL   string
	SMSAPIKey   string
	SMSSenderID string

	StripeSecretKey     string
	StripeWebhookSecret string
	PaymentCurrency     string
	PaymentMinorUnits   int64
	PaymentSuccessURL   string
	PaymentCancelURL    string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	HREmail      string

	LogLevel  string
	LogFormat string

	OTelExporter string
	OTLPEndpoint string

	AdminUsername string
	AdminPassword string
}

// Load reads .env if present, then the process environment. The returned
// error only reports a missing/unreadable .env file and is not fatal.
func Load() (*Config, error) {
	envErr := godotenv.Load(".env")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		DatabasePath: getEnv("DATABASE_PATH", "shawarma_sheesh.db"),

		JWTSecret: []byte(getEnv("JWT_SECRET", "shawarma_sheesh_dev_secret")),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		OTPTTL:         getDuration("OTP_TTL", 5*time.Minute),
		OTPMaxRequests: getInt("OTP_MAX_REQUESTS", 3),
		OTPWindow:      getDuration("OTP_WINDOW", 15*time.Minute),

		SMSAPIURL:   getEnv("SMS_API_URL", ""),
		SMSAPIKey:   getEnv("SMS_API_KEY", ""),
		SMSSenderID: getEnv("SMS_SENDER_ID", "SHEESH"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		PaymentCurrency:     strings.ToLower(getEnv("PAYMENT_CURRENCY", "jod")),
		PaymentMinorUnits:   int64(getInt("PAYMENT_MINOR_UNITS", 1000)),
		PaymentSuccessURL:   getEnv("PAYMENT_SUCCESS_URL", "http://localhost:3000/payment/success"),
		PaymentCancelURL:    getEnv("PAYMENT_CANCEL_URL", "http://localhost:3000/payment/cancel"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@shawarmasheesh.com"),
		HREmail:      getEnv("HR_EMAIL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		OTelExporter: getEnv("OTEL_EXPORTER", "none"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
	return cfg, envErr
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
