package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"studyai_go_backend/internal/kvstore"
	"studyai_go_backend/internal/models"
	"studyai_go_backend/internal/services"

	"github.com/stretchr/testify/require"
)

// seedProfile writes a profile directly into the store, bypassing the
// services under test.
func seedProfile(t *testing.T, store kvstore.Store, profile models.UserProfile) {
	t.Helper()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, store.Set(context.Background(), "user:"+profile.ID, &profile))
}

// storedProfile reads a profile back out of the store.
func storedProfile(t *testing.T, store kvstore.Store, userID string) models.UserProfile {
	t.Helper()
	raw, err := store.Get(context.Background(), "user:"+userID)
	require.NoError(t, err)
	var profile models.UserProfile
	require.NoError(t, json.Unmarshal(raw, &profile))
	return profile
}

// yesterday returns the calendar-day marker for the previous day.
func yesterday() string {
	return services.CalendarDay(time.Now().AddDate(0, 0, -1))
}
