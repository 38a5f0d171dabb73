package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/cardbilling/internal/app/service/catalog"
	"github.com/fatflowers/cardbilling/internal/app/service/subscription"
	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/internal/platform/db/dbtest"
	"github.com/fatflowers/cardbilling/internal/platform/gateway"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/types"
)

type stubGateway struct {
	err      error
	requests []gateway.OrderRequest
}

func (g *stubGateway) OpenOrder(_ context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.Order{ID: fmt.Sprintf("order_%d", len(g.requests)), Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func (g *stubGateway) KeyID() string { return "rzp_test_key" }

func newTestService(t *testing.T, gw Gateway) (*Service, *subscription.Service, *gorm.DB) {
	t.Helper()
	gdb := dbtest.Open(t)
	c, err := catalog.NewFromConfig(&cfgpkg.Config{})
	require.NoError(t, err)
	subs := subscription.NewService(gdb, zap.NewNop().Sugar(), nil)
	return NewService(c, gw, subs, zap.NewNop().Sugar()), subs, gdb
}

func TestCreateOrder_EveryPlan(t *testing.T) {
	gw := &stubGateway{}
	svc, subs, _ := newTestService(t, gw)
	ctx := context.Background()

	for _, plan := range cfgpkg.DefaultPlans() {
		t.Run(plan.Key, func(t *testing.T) {
			res, err := svc.CreateOrder(ctx, "biz-1", plan.Key)
			require.NoError(t, err)
			require.Equal(t, "rzp_test_key", res.KeyID)
			require.Equal(t, types.SubscriptionStatusPending, res.Subscription.Status)
			require.Equal(t, plan.Amount, res.Subscription.Amount)
			require.Equal(t, plan.Amount, res.GatewayOrder.Amount)

			stored, err := subs.GetByID(ctx, res.Subscription.ID)
			require.NoError(t, err)
			require.Equal(t, types.SubscriptionStatusPending, stored.Status)
			require.Equal(t, plan.Amount, stored.Amount)
			require.Equal(t, res.GatewayOrder.ID, stored.GatewayOrderID)
			require.Equal(t, plan.Key, stored.Plan().Key)
			require.Nil(t, stored.StartDate)
		})
	}

	last := gw.requests[len(gw.requests)-1]
	require.Equal(t, "biz-1", last.Notes["business_id"])
	require.Contains(t, last.Receipt, "rcpt_")
}

func TestCreateOrder_Failures(t *testing.T) {
	tests := []struct {
		name       string
		businessID string
		planType   string
		gwErr      error
		wantErr    error
	}{
		{name: "unknown plan", businessID: "biz-1", planType: "weekly", wantErr: billingerr.ErrInvalidPlan},
		{name: "empty plan", businessID: "biz-1", planType: "", wantErr: billingerr.ErrInvalidPlan},
		{name: "missing business", businessID: " ", planType: "monthly", wantErr: billingerr.ErrInvalidInput},
		{name: "gateway down", businessID: "biz-1", planType: "monthly", gwErr: fmt.Errorf("%w: timeout", billingerr.ErrGatewayUnavailable), wantErr: billingerr.ErrGatewayUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, gdb := newTestService(t, &stubGateway{err: tt.gwErr})
			_, err := svc.CreateOrder(context.Background(), tt.businessID, tt.planType)
			require.ErrorIs(t, err, tt.wantErr)

			var count int64
			require.NoError(t, gdb.Model(&models.Subscription{}).Count(&count).Error)
			require.Zero(t, count)
		})
	}
}

func TestCreateOrder_NotIdempotent(t *testing.T) {
	svc, _, gdb := newTestService(t, &stubGateway{})
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, "biz-1", "monthly")
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, "biz-1", "monthly")
	require.NoError(t, err)

	var count int64
	require.NoError(t, gdb.Model(&models.Subscription{}).Where("business_id = ? AND status = ?", "biz-1", types.SubscriptionStatusPending).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestJanitor_ExpireStalePending(t *testing.T) {
	svc, subs, gdb := newTestService(t, &stubGateway{})
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	stale, err := svc.CreateOrder(ctx, "biz-1", "monthly")
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(6 * 24 * time.Hour) }
	fresh, err := svc.CreateOrder(ctx, "biz-1", "monthly")
	require.NoError(t, err)

	j := NewJanitor(&cfgpkg.Config{Billing: cfgpkg.BillingConfig{PendingOrderTTL: 7 * 24 * time.Hour}}, gdb, zap.NewNop().Sugar())
	j.now = func() time.Time { return base.Add(8 * 24 * time.Hour) }

	n, err := j.ExpireStalePending(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := subs.GetByID(ctx, stale.Subscription.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusExpired, got.Status)

	got, err = subs.GetByID(ctx, fresh.Subscription.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusPending, got.Status)

	var logs []*models.SubscriptionLog
	require.NoError(t, gdb.Where("subscription_id = ?", stale.Subscription.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, types.SubscriptionChangeReasonAbandon, logs[0].Reason)
	require.Equal(t, types.SubscriptionStatusExpired, logs[0].After.Data().Status)

	n, err = j.ExpireStalePending(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	gdb := dbtest.Open(t)
	j := NewJanitor(&cfgpkg.Config{Billing: cfgpkg.BillingConfig{JanitorInterval: 5 * time.Millisecond}}, gdb, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
