package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/cardbilling/internal/models"
	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/tool"
	"github.com/fatflowers/cardbilling/pkg/types"
)

const (
	defaultPendingTTL      = 7 * 24 * time.Hour
	defaultJanitorInterval = time.Hour
	sweepBatch             = 500
)

// Janitor expires PENDING orders that were never paid.
type Janitor struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewJanitor(cfg *cfgpkg.Config, db *gorm.DB, log *zap.SugaredLogger) *Janitor {
	j := &Janitor{
		db:       db,
		log:      log,
		ttl:      cfg.Billing.PendingOrderTTL,
		interval: cfg.Billing.JanitorInterval,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if j.ttl <= 0 {
		j.ttl = defaultPendingTTL
	}
	if j.interval <= 0 {
		j.interval = defaultJanitorInterval
	}
	return j
}

// ExpireStalePending marks PENDING records created before now-ttl as EXPIRED
// and returns how many were changed. Each change is logged as abandoned.
func (j *Janitor) ExpireStalePending(ctx context.Context) (int64, error) {
	now := j.now()
	cutoff := now.Add(-j.ttl)

	var stale []*models.Subscription
	if err := j.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", types.SubscriptionStatusPending, cutoff).
		Limit(sweepBatch).Find(&stale).Error; err != nil {
		return 0, fmt.Errorf("failed to load stale orders: %w", err)
	}

	logs := make([]*models.SubscriptionLog, 0, len(stale))
	for _, sub := range stale {
		// The order may have been paid since it was loaded.
		res := j.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("id = ? AND status = ?", sub.ID, types.SubscriptionStatusPending).
			Updates(map[string]any{"status": types.SubscriptionStatusExpired, "updated_at": now})
		if res.Error != nil {
			return int64(len(logs)), fmt.Errorf("failed to expire stale order %s: %w", sub.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}
		after := sub.Clone()
		after.Status = types.SubscriptionStatusExpired
		after.UpdatedAt = now
		logs = append(logs, &models.SubscriptionLog{
			ID:             tool.GenerateUUIDV7(),
			BusinessID:     sub.BusinessID,
			SubscriptionID: sub.ID,
			Reason:         types.SubscriptionChangeReasonAbandon,
			Before:         datatypes.NewJSONType(sub),
			After:          datatypes.NewJSONType(after),
			Extra:          datatypes.JSONMap{"gateway_order_id": sub.GatewayOrderID},
		})
	}
	if len(logs) == 0 {
		return 0, nil
	}
	if err := j.db.WithContext(ctx).CreateInBatches(logs, 100).Error; err != nil {
		j.log.Errorw("subscription_log_save_failed", "reason", types.SubscriptionChangeReasonAbandon, "err", err)
	}
	j.log.Infow("stale_orders_expired", "count", len(logs), "cutoff", cutoff)
	return int64(len(logs)), nil
}

// Run sweeps on every tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		if _, err := j.ExpireStalePending(ctx); err != nil {
			j.log.Errorw("janitor_sweep_failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func registerJanitor(lc fx.Lifecycle, j *Janitor) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				j.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
