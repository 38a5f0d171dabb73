package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysRemaining(t *testing.T) {
	tests := []struct {
		name string
		end  time.Time
		now  time.Time
		want int
	}{
		{name: "one week left", end: date(2024, 4, 1), now: date(2024, 3, 25), want: 7},
		{name: "already ended", end: date(2024, 3, 20), now: date(2024, 3, 25), want: 0},
		{name: "same day", end: date(2024, 3, 25), now: date(2024, 3, 25), want: 0},
		{name: "time of day ignored", end: date(2024, 4, 1).Add(time.Hour), now: date(2024, 3, 25).Add(23 * time.Hour), want: 7},
		{name: "non utc input", end: time.Date(2024, 4, 1, 3, 0, 0, 0, time.FixedZone("IST", 5*3600+1800)), now: date(2024, 3, 25), want: 6},
		{name: "across leap day", end: date(2024, 3, 1), now: date(2024, 2, 28), want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DaysRemaining(tt.end, tt.now))
		})
	}
}

func TestIsActiveAndDisplayStatus(t *testing.T) {
	end := date(2024, 4, 1)
	tests := []struct {
		name        string
		status      types.SubscriptionStatus
		endDate     *time.Time
		now         time.Time
		wantActive  bool
		wantDisplay types.SubscriptionStatus
	}{
		{name: "active in period", status: types.SubscriptionStatusActive, endDate: &end, now: date(2024, 2, 15), wantActive: true, wantDisplay: types.SubscriptionStatusActive},
		{name: "cancelled in period", status: types.SubscriptionStatusCancelled, endDate: &end, now: date(2024, 2, 15), wantActive: true, wantDisplay: types.SubscriptionStatusCancelled},
		{name: "cancelled after period", status: types.SubscriptionStatusCancelled, endDate: &end, now: date(2024, 4, 2), wantDisplay: types.SubscriptionStatusExpired},
		{name: "active exactly at end", status: types.SubscriptionStatusActive, endDate: &end, now: end, wantDisplay: types.SubscriptionStatusExpired},
		{name: "pending", status: types.SubscriptionStatusPending, now: date(2024, 2, 15), wantDisplay: types.SubscriptionStatusPending},
		{name: "expired", status: types.SubscriptionStatusExpired, endDate: &end, now: date(2024, 2, 15), wantDisplay: types.SubscriptionStatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &models.Subscription{Status: tt.status, EndDate: tt.endDate}
			require.Equal(t, tt.wantActive, IsActive(sub, tt.now))
			require.Equal(t, tt.wantDisplay, DisplayStatus(sub, tt.now))
		})
	}

	require.False(t, IsActive(nil, end))
	require.Equal(t, types.SubscriptionStatus(""), DisplayStatus(nil, end))
}
