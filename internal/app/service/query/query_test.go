package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/cardbilling/internal/app/service/subscription"
	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/internal/platform/db/dbtest"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	"github.com/fatflowers/cardbilling/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFindInvoiceForSubscription(t *testing.T) {
	a := &models.Invoice{ID: "inv-a", SubscriptionID: "018f2b3c-4d5e-7f60-8a9b-0c1d2e3f4a5b"}
	b := &models.Invoice{ID: "inv-b", SubscriptionID: "018f2b3c-4d5e-7f60-8a9b-0c1d2e3f4a5c"}

	tests := []struct {
		name           string
		subscriptionID string
		invoices       []*models.Invoice
		want           *models.Invoice
	}{
		{name: "exact match", subscriptionID: b.SubscriptionID, invoices: []*models.Invoice{a, b}, want: b},
		{name: "match ignores case and spaces", subscriptionID: " 018F2B3C-4D5E-7F60-8A9B-0C1D2E3F4A5C ", invoices: []*models.Invoice{a, b}, want: b},
		{name: "falls back to first", subscriptionID: "unknown", invoices: []*models.Invoice{a, b}, want: a},
		{name: "empty list", subscriptionID: a.SubscriptionID, invoices: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Same(t, tt.want, FindInvoiceForSubscription(tt.subscriptionID, tt.invoices))
		})
	}
}

type stubInvoices struct {
	list []*models.Invoice
}

func (s *stubInvoices) ListByBusiness(context.Context, string) ([]*models.Invoice, error) {
	return s.list, nil
}

func (s *stubInvoices) Download(_ context.Context, businessID, invoiceID string) ([]byte, *models.Invoice, error) {
	for _, inv := range s.list {
		if inv.ID == invoiceID && inv.BusinessID == businessID {
			return []byte("%PDF-"), inv, nil
		}
	}
	return nil, nil, billingerr.ErrNotFound
}

func TestGetCurrentSubscription(t *testing.T) {
	gdb := dbtest.Open(t)
	subs := subscription.NewService(gdb, zap.NewNop().Sugar(), nil)
	svc := NewService(subs, &stubInvoices{}, zap.NewNop().Sugar())
	ctx := context.Background()

	view, err := svc.GetCurrentSubscription(ctx, "biz-1")
	require.NoError(t, err)
	require.Nil(t, view)

	plan := &types.Plan{Key: "monthly", Amount: 2999, Currency: "INR", Duration: 1, DurationType: types.DurationTypeMonths}
	start, end := date(2024, 1, 1), date(2024, 2, 1)
	sub := &models.Subscription{
		ID:             "sub-1",
		BusinessID:     "biz-1",
		PlanType:       plan.Key,
		Status:         types.SubscriptionStatusActive,
		Amount:         plan.Amount,
		Currency:       plan.Currency,
		StartDate:      &start,
		EndDate:        &end,
		GatewayOrderID: "order_1",
		PlanSnapshot:   datatypes.NewJSONType(plan),
		CreatedAt:      start,
	}
	require.NoError(t, subs.Create(ctx, sub))
	require.NoError(t, gdb.Create(&models.SubscriptionPayment{ID: "pay-row-1", SubscriptionID: sub.ID, Date: start, GatewayPaymentID: "pay_1", Amount: 2999, Currency: "INR", Status: types.PaymentStatusPaid, Source: types.PaymentSourceClient}).Error)

	subs.SetClock(func() time.Time { return date(2024, 1, 25) })
	view, err = svc.GetCurrentSubscription(ctx, "biz-1")
	require.NoError(t, err)
	require.True(t, view.IsActive)
	require.Equal(t, types.SubscriptionStatusActive, view.DisplayStatus)
	require.Equal(t, 7, view.DaysRemaining)
	require.Equal(t, "29.99 INR", view.AmountDisplay)
	require.Len(t, view.PaymentHistory, 1)
	require.Equal(t, "monthly", view.Plan.Key)

	subs.SetClock(func() time.Time { return date(2024, 2, 1) })
	view, err = svc.GetCurrentSubscription(ctx, "biz-1")
	require.NoError(t, err)
	require.False(t, view.IsActive)
	require.Equal(t, types.SubscriptionStatusExpired, view.DisplayStatus)
	require.Equal(t, types.SubscriptionStatusExpired, view.Status)
	require.Zero(t, view.DaysRemaining)

	stored, err := subs.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusExpired, stored.Status)
}

func TestInvoiceQueries(t *testing.T) {
	inv := &models.Invoice{ID: "inv-1", BusinessID: "biz-1", SubscriptionID: "sub-1", InvoiceNumber: 1}
	svc := NewService(nil, &stubInvoices{list: []*models.Invoice{inv}}, zap.NewNop().Sugar())
	ctx := context.Background()

	list, err := svc.ListInvoices(ctx, "biz-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	body, got, err := svc.DownloadInvoice(ctx, "biz-1", "inv-1")
	require.NoError(t, err)
	require.Equal(t, inv, got)
	require.NotEmpty(t, body)

	_, _, err = svc.DownloadInvoice(ctx, "biz-2", "inv-1")
	require.ErrorIs(t, err, billingerr.ErrNotFound)
}
