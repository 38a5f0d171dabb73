package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPlan_AddPeriod(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	quarterly := &Plan{Key: "quarterly", Duration: 3, DurationType: DurationTypeMonths}
	require.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), quarterly.AddPeriod(start))

	yearly := &Plan{Key: "yearly", Duration: 1, DurationType: DurationTypeYears}
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), yearly.AddPeriod(start))
}

func TestSubscriptionStatus_GrantsAccess(t *testing.T) {
	require.True(t, SubscriptionStatusActive.GrantsAccess())
	require.True(t, SubscriptionStatusCancelled.GrantsAccess())
	require.False(t, SubscriptionStatusPending.GrantsAccess())
	require.False(t, SubscriptionStatusExpired.GrantsAccess())
}
