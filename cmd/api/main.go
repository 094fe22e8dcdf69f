package main

import (
	"context"
	"os"
	"time"

	"studyai_go_backend/cmd/api/config"
	"studyai_go_backend/internal/api"
	"studyai_go_backend/internal/auth"
	"studyai_go_backend/internal/database"
	"studyai_go_backend/internal/kvstore"
	"studyai_go_backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

func main() {
	log.Logger = zerolog.New(os.Stdout).With().
		Str("service", "studyai-api").
		Timestamp().
		Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found")
	}

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set in the environment")
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal().Msg("GOOGLE_AI_STUDIO_API_KEY is not set in the environment")
	}

	ctx := context.Background()

	var db *gorm.DB
	var err error
	if cfg.DatabaseDSN != "" {
		db, err = database.OpenPostgres(cfg.DatabaseDSN)
	} else {
		log.Info().Str("path", cfg.SQLitePath).Msg("DB_HOST not set, using sqlite")
		db, err = database.OpenSQLite(cfg.SQLitePath)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	store, err := kvstore.NewGormStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize KV store")
	}

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GenAI client")
	}
	defer genaiClient.Close()

	provider := auth.NewJWTProvider(store, []byte(cfg.JWTSecret), cfg.TokenTTL)
	aiService := services.NewGeminiService(genaiClient, cfg.GeminiModel, cfg.AIRequestTimeout)
	profileService := services.NewProfileService(store)
	quotaService := services.NewQuotaService(store)
	contentService := services.NewContentService(store)
	subscriptionService := services.NewSubscriptionService(profileService)

	var stripeService *services.StripeService
	if cfg.StripeSecretKey != "" {
		stripeService = services.NewStripeService(cfg.StripePublicKey, cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiGroup := r.Group("/api")
	api.SetupRoutes(apiGroup, api.Deps{
		Provider:      provider,
		AI:            aiService,
		Quota:         quotaService,
		Profiles:      profileService,
		Content:       contentService,
		Subscriptions: subscriptionService,
		Stripe:        stripeService,
		PremiumPrice:  cfg.StripePremiumPriceID,
		CheckoutURLs: api.CheckoutURLs{
			Success: cfg.CheckoutSuccessURL,
			Cancel:  cfg.CheckoutCancelURL,
		},
	})
	auth.SetupRoutes(apiGroup, provider, profileService)

	log.Info().Str("port", cfg.Port).Msg("Server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
