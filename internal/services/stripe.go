package services

import (
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

type StripeService struct {
	publicKey     string
	secretKey     string
	webhookSecret string
}

func NewStripeService(publicKey, secretKey, webhookSecret string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		publicKey:     publicKey,
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
	}
}

// CreatePremiumCheckoutSession starts a Stripe checkout for the premium
// subscription. The user id travels in ClientReferenceID so the webhook can
// upgrade the right profile.
func (s *StripeService) CreatePremiumCheckoutSession(userID, priceID, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(userID),
		Metadata: map[string]string{
			"subscription": "premium",
		},
	}

	return session.New(params)
}

func (s *StripeService) HandleWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, s.webhookSecret)
}
