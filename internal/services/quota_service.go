package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"studyai_go_backend/internal/kvstore"
	"studyai_go_backend/internal/models"
)

const (
	// FreeDailyLimit is the number of AI-backed calls a free-tier user may
	// make per calendar day.
	FreeDailyLimit = 10

	// UnlimitedCalls is the remaining-calls sentinel reported for premium
	// users. The client already expects -1 here.
	UnlimitedCalls = -1

	// calendarDayLayout matches the day marker format the stored profiles use.
	calendarDayLayout = "Mon Jan 02 2006"

	casRetries = 5
)

// ErrQuotaContention is returned when the conditional profile update keeps
// losing to concurrent requests for the same user.
var ErrQuotaContention = errors.New("could not update quota counter, too many concurrent requests")

// CalendarDay formats t as the calendar-day marker used in LastAPICallDate.
func CalendarDay(t time.Time) string {
	return t.Format(calendarDayLayout)
}

// Today returns the current calendar-day marker.
func Today() string {
	return CalendarDay(time.Now())
}

// QuotaDecision is the outcome of a quota check. Remaining is UnlimitedCalls
// for premium users and the number of calls left today otherwise.
type QuotaDecision struct {
	Allowed   bool
	Remaining int
}

// QuotaLedger gates AI-backed calls against the per-user daily limit.
type QuotaLedger interface {
	CheckAndConsume(ctx context.Context, userID, today string) (QuotaDecision, error)
}

// QuotaService implements QuotaLedger over the KV store. The read-modify-write
// of the call counter goes through CompareAndSet so that concurrent requests
// from the same user cannot push the counter past the limit.
type QuotaService struct {
	store kvstore.Store
}

func NewQuotaService(store kvstore.Store) *QuotaService {
	return &QuotaService{store: store}
}

func (s *QuotaService) CheckAndConsume(ctx context.Context, userID, today string) (QuotaDecision, error) {
	key := profileKey(userID)

	for attempt := 0; attempt < casRetries; attempt++ {
		raw, err := s.store.Get(ctx, key)
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return QuotaDecision{}, ErrProfileNotFound
		}
		if err != nil {
			return QuotaDecision{}, err
		}

		var profile models.UserProfile
		if err := json.Unmarshal(raw, &profile); err != nil {
			return QuotaDecision{}, err
		}

		// A stored count from a previous day no longer applies. The reset is
		// read-time only; it is persisted with the next allowed call.
		calls := profile.DailyAPICalls
		if profile.LastAPICallDate != today {
			calls = 0
		}

		if profile.Subscription == models.SubscriptionPremium {
			return QuotaDecision{Allowed: true, Remaining: UnlimitedCalls}, nil
		}

		if calls >= FreeDailyLimit {
			// Denied calls must not mutate the stored profile.
			return QuotaDecision{Allowed: false, Remaining: 0}, nil
		}

		profile.DailyAPICalls = calls + 1
		profile.LastAPICallDate = today
		profile.UpdatedAt = time.Now().UTC()

		swapped, err := s.store.CompareAndSet(ctx, key, raw, &profile)
		if err != nil {
			return QuotaDecision{}, err
		}
		if swapped {
			return QuotaDecision{Allowed: true, Remaining: FreeDailyLimit - profile.DailyAPICalls}, nil
		}
		// Another request for this user won the write; reload and re-check.
	}

	return QuotaDecision{}, ErrQuotaContention
}
