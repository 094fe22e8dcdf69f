package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"studyai_go_backend/internal/kvstore"
	"studyai_go_backend/internal/models"
)

// ErrProfileNotFound is returned when no profile exists for a user id.
var ErrProfileNotFound = errors.New("user profile not found")

const userKeyPrefix = "user:"

func profileKey(userID string) string {
	return userKeyPrefix + userID
}

// ProfileService owns UserProfile records in the KV store.
type ProfileService struct {
	store kvstore.Store
}

func NewProfileService(store kvstore.Store) *ProfileService {
	return &ProfileService{store: store}
}

// CreateProfile writes the initial free-tier profile for a newly registered
// user.
func (s *ProfileService) CreateProfile(ctx context.Context, userID, email, name string) (*models.UserProfile, error) {
	now := time.Now().UTC()
	profile := models.UserProfile{
		ID:              userID,
		Email:           email,
		Name:            name,
		Subscription:    models.SubscriptionFree,
		DailyAPICalls:   0,
		LastAPICallDate: CalendarDay(now),
		CreatedAt:       now,
	}
	if err := s.store.Set(ctx, profileKey(userID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	raw, err := s.getProfileRaw(ctx, userID)
	if err != nil {
		return nil, err
	}
	var profile models.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	return s.store.Set(ctx, profileKey(profile.ID), profile)
}

// getProfileRaw returns the stored profile JSON exactly as persisted, for use
// as a compare-and-swap pre-image.
func (s *ProfileService) getProfileRaw(ctx context.Context, userID string) (json.RawMessage, error) {
	raw, err := s.store.Get(ctx, profileKey(userID))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}
