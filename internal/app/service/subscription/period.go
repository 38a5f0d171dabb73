package subscription

import (
	"time"

	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/pkg/types"
)

const day = 24 * time.Hour

// IsActive reports whether sub grants access at now. Expiry is derived from
// end_date here and never depends on a background sweep.
func IsActive(sub *models.Subscription, now time.Time) bool {
	if sub == nil || sub.EndDate == nil {
		return false
	}
	return sub.Status.GrantsAccess() && now.Before(*sub.EndDate)
}

// DaysRemaining counts whole UTC days from now until endDate, never negative.
func DaysRemaining(endDate, now time.Time) int {
	end := truncateDay(endDate)
	start := truncateDay(now)
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / day)
}

// DisplayStatus is the status shown to callers: a lapsed ACTIVE or CANCELLED
// record reads as EXPIRED even before the store catches up.
func DisplayStatus(sub *models.Subscription, now time.Time) types.SubscriptionStatus {
	if sub == nil {
		return ""
	}
	if sub.Status.GrantsAccess() && !IsActive(sub, now) {
		return types.SubscriptionStatusExpired
	}
	return sub.Status
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
