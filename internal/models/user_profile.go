package models

import "time"

// Subscription tiers. Free users are subject to the daily API call limit,
// premium users are not.
const (
	SubscriptionFree    = "free"
	SubscriptionPremium = "premium"
)

// UserProfile is the per-user record stored in the KV store under "user:{id}".
// JSON field names match the payloads the client already consumes.
type UserProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Subscription  string `json:"subscription"`
	DailyAPICalls int    `json:"dailyApiCalls"`
	// LastAPICallDate is a calendar-day marker ("Mon Jan 02 2006").
	// DailyAPICalls is only meaningful for the day it names; on any other day
	// the effective count is zero.
	LastAPICallDate string    `json:"lastApiCallDate"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ValidSubscription reports whether tier is one of the known subscription tiers.
func ValidSubscription(tier string) bool {
	return tier == SubscriptionFree || tier == SubscriptionPremium
}
