package services

import (
	"context"
	"errors"
	"time"

	"studyai_go_backend/internal/models"
)

// ErrInvalidSubscription is returned for tiers outside {free, premium}.
var ErrInvalidSubscription = errors.New("invalid subscription type")

// SubscriptionService switches users between subscription tiers.
type SubscriptionService struct {
	profiles *ProfileService
}

func NewSubscriptionService(profiles *ProfileService) *SubscriptionService {
	return &SubscriptionService{profiles: profiles}
}

// SetSubscription updates the user's tier. Moving to the free tier resets the
// daily call counter.
func (s *SubscriptionService) SetSubscription(ctx context.Context, userID, tier string) (*models.UserProfile, error) {
	if !models.ValidSubscription(tier) {
		return nil, ErrInvalidSubscription
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Subscription = tier
	if tier == models.SubscriptionFree {
		profile.DailyAPICalls = 0
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
