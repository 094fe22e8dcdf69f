package api

import (
	"encoding/json"
	"io"
	"net/http"

	"studyai_go_backend/internal/auth"
	apperrors "studyai_go_backend/internal/errors"
	"studyai_go_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v79"
)

func createCheckoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserIDFromContext(c)

		checkoutSession, err := deps.Stripe.CreatePremiumCheckoutSession(
			userID,
			deps.PremiumPrice,
			deps.CheckoutURLs.Success,
			deps.CheckoutURLs.Cancel,
		)
		if err != nil {
			apperrors.HandleError(c, apperrors.New500Error(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"sessionId": checkoutSession.ID,
			"url":       checkoutSession.URL,
		})
	}
}

func stripeWebhookHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		const MaxBodyBytes = int64(65536)
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
			return
		}

		signatureHeader := c.GetHeader("Stripe-Signature")
		event, err := deps.Stripe.HandleWebhook(payload, signatureHeader)
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Failed to verify webhook signature"))
			return
		}

		switch event.Type {
		case "checkout.session.completed":
			var checkoutSession stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
				apperrors.HandleError(c, apperrors.New400Error("Failed to parse checkout session"))
				return
			}

			userID := checkoutSession.ClientReferenceID
			if _, err := deps.Subscriptions.SetSubscription(c.Request.Context(), userID, models.SubscriptionPremium); err != nil {
				apperrors.HandleError(c, apperrors.New500Error(err))
				return
			}
			log.Info().Str("userId", userID).Msg("Subscription upgraded to premium via checkout")

		default:
			log.Debug().Str("eventType", string(event.Type)).Msg("Unhandled Stripe event")
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
