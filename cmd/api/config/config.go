package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	// DatabaseDSN is empty when no postgres is configured; the server then
	// falls back to SQLitePath.
	DatabaseDSN string
	SQLitePath  string

	JWTSecret string
	TokenTTL  time.Duration

	GeminiAPIKey     string
	GeminiModel      string
	AIRequestTimeout time.Duration

	StripePublicKey      string
	StripeSecretKey      string
	StripeWebhookSecret  string
	StripePremiumPriceID string
	CheckoutSuccessURL   string
	CheckoutCancelURL    string
}

func Load() *Config {
	cfg := &Config{
		Port:             getEnv("PORT", "3000"),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		SQLitePath:       getEnv("SQLITE_PATH", "studyai.db"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenTTL:         24 * time.Hour,
		GeminiAPIKey:     os.Getenv("GOOGLE_AI_STUDIO_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		AIRequestTimeout: 60 * time.Second,

		StripePublicKey:      os.Getenv("STRIPE_PUBLIC_KEY"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePremiumPriceID: os.Getenv("STRIPE_PREMIUM_PRICE_ID"),
		CheckoutSuccessURL:   getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:5173/success?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelURL:    getEnv("CHECKOUT_CANCEL_URL", "http://localhost:5173/cancel"),
	}

	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DatabaseDSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			host,
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			getEnv("DB_PORT", "5432"),
		)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
