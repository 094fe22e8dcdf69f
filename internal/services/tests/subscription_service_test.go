package services_test

import (
	"context"
	"testing"

	"studyai_go_backend/internal/kvstore"
	"studyai_go_backend/internal/models"
	"studyai_go_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown tiers", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		subscriptions := services.NewSubscriptionService(services.NewProfileService(store))

		_, err := subscriptions.SetSubscription(ctx, "u1", "platinum")
		assert.ErrorIs(t, err, services.ErrInvalidSubscription)
	})

	t.Run("missing profile", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		subscriptions := services.NewSubscriptionService(services.NewProfileService(store))

		_, err := subscriptions.SetSubscription(ctx, "nobody", models.SubscriptionPremium)
		assert.ErrorIs(t, err, services.ErrProfileNotFound)
	})

	t.Run("upgrade keeps the call counter", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		subscriptions := services.NewSubscriptionService(services.NewProfileService(store))
		seedProfile(t, store, models.UserProfile{
			ID:            "u1",
			Subscription:  models.SubscriptionFree,
			DailyAPICalls: 7,
		})

		profile, err := subscriptions.SetSubscription(ctx, "u1", models.SubscriptionPremium)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionPremium, profile.Subscription)
		assert.Equal(t, 7, profile.DailyAPICalls)
		assert.Equal(t, 7, storedProfile(t, store, "u1").DailyAPICalls)
	})

	t.Run("downgrade resets the call counter", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		subscriptions := services.NewSubscriptionService(services.NewProfileService(store))
		seedProfile(t, store, models.UserProfile{
			ID:            "u1",
			Subscription:  models.SubscriptionPremium,
			DailyAPICalls: 7,
		})

		profile, err := subscriptions.SetSubscription(ctx, "u1", models.SubscriptionFree)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionFree, profile.Subscription)
		assert.Equal(t, 0, profile.DailyAPICalls)

		stored := storedProfile(t, store, "u1")
		assert.Equal(t, models.SubscriptionFree, stored.Subscription)
		assert.Equal(t, 0, stored.DailyAPICalls)
		assert.False(t, stored.UpdatedAt.IsZero())
	})
}

func TestCreateAndGetProfile(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	profiles := services.NewProfileService(store)

	created, err := profiles.CreateProfile(ctx, "u1", "student@example.com", "Student")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionFree, created.Subscription)
	assert.Equal(t, 0, created.DailyAPICalls)

	fetched, err := profiles.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	_, err = profiles.GetProfile(ctx, "u2")
	assert.ErrorIs(t, err, services.ErrProfileNotFound)
}
