package api

import (
	"net/http"

	"studyai_go_backend/internal/auth"
	"studyai_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps carries the services the handlers are wired with.
type Deps struct {
	Provider      auth.IdentityProvider
	AI            services.AIProvider
	Quota         services.QuotaLedger
	Profiles      *services.ProfileService
	Content       *services.ContentService
	Subscriptions *services.SubscriptionService
	Stripe        *services.StripeService
	PremiumPrice  string
	CheckoutURLs  CheckoutURLs
}

// CheckoutURLs are the redirect targets for Stripe checkout.
type CheckoutURLs struct {
	Success string
	Cancel  string
}

func SetupRoutes(rg *gin.RouterGroup, deps Deps) {
	rg.GET("/health", healthCheck)

	aiGroup := rg.Group("/ai", auth.AuthMiddleware(deps.Provider))
	{
		aiGroup.POST("/chat", chatHandler(deps))
		aiGroup.POST("/generate-notes", generateNotesHandler(deps))
		aiGroup.POST("/generate-flashcards", generateFlashcardsHandler(deps))
		aiGroup.POST("/generate-routine", generateRoutineHandler(deps))
		aiGroup.POST("/generate-quiz", generateQuizHandler(deps))
	}

	userGroup := rg.Group("/user", auth.AuthMiddleware(deps.Provider))
	{
		userGroup.GET("/content", getUserContentHandler(deps))
		userGroup.GET("/profile", getUserProfileHandler(deps))
		userGroup.POST("/subscription", updateSubscriptionHandler(deps))
	}

	if deps.Stripe != nil {
		billingGroup := rg.Group("/billing")
		{
			billingGroup.POST("/checkout", auth.AuthMiddleware(deps.Provider), createCheckoutHandler(deps))
			billingGroup.POST("/webhook", stripeWebhookHandler(deps))
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
