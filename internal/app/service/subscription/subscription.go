package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/cardbilling/internal/app/service/notification"
	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/tool"
	"github.com/fatflowers/cardbilling/pkg/types"
)

type Publisher interface {
	Publish(ctx context.Context, ev *notification.Event) <-chan struct{}
}

// Service owns the subscription lifecycle. Every transition is a single
// conditional UPDATE keyed on the current status, so concurrent callers
// cannot both win.
type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	notifier Publisher
	now      func() time.Time
}

// NewService builds the service. notifier may be nil, in which case no
// lifecycle events are published.
func NewService(db *gorm.DB, log *zap.SugaredLogger, notifier Publisher) *Service {
	return &Service{db: db, log: log, notifier: notifier, now: func() time.Time { return time.Now().UTC() }}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Now() time.Time {
	return s.now()
}

// Activation describes a committed PENDING -> ACTIVE transition.
type Activation struct {
	Before     *models.Subscription
	After      *models.Subscription
	Superseded []*models.Subscription
	Payment    *models.SubscriptionPayment
}

// Activate moves sub from PENDING to ACTIVE inside tx, appends payment to its
// history and expires whatever subscription of the same business still granted
// access. sub is updated in place on success.
func (s *Service) Activate(ctx context.Context, tx *gorm.DB, sub *models.Subscription, payment *models.SubscriptionPayment, now time.Time) (*Activation, error) {
	plan := sub.Plan()
	if plan == nil {
		return nil, fmt.Errorf("subscription %s has no plan snapshot", sub.ID)
	}
	before := sub.Clone()
	start := now.UTC()
	end := plan.AddPeriod(start)

	res := tx.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, types.SubscriptionStatusPending).
		Updates(map[string]any{
			"status":     types.SubscriptionStatusActive,
			"start_date": start,
			"end_date":   end,
			"updated_at": start,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to activate subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: activate %s from %s", billingerr.ErrInvalidTransition, sub.ID, sub.Status)
	}

	superseded, err := s.supersede(ctx, tx, sub, start)
	if err != nil {
		return nil, err
	}

	if payment.ID == "" {
		payment.ID = tool.GenerateUUIDV7()
	}
	payment.SubscriptionID = sub.ID
	payment.Status = types.PaymentStatusPaid
	if payment.Date.IsZero() {
		payment.Date = start
	}
	if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to append payment history: %w", err)
	}

	sub.Status = types.SubscriptionStatusActive
	sub.StartDate = &start
	sub.EndDate = &end
	sub.UpdatedAt = start
	sub.PaymentHistory = append(sub.PaymentHistory, payment)

	return &Activation{Before: before, After: sub.Clone(), Superseded: superseded, Payment: payment}, nil
}

func (s *Service) supersede(ctx context.Context, tx *gorm.DB, sub *models.Subscription, now time.Time) ([]*models.Subscription, error) {
	var prev []*models.Subscription
	if err := tx.WithContext(ctx).
		Where("business_id = ? AND id <> ? AND status IN ?", sub.BusinessID, sub.ID, accessStatuses).
		Find(&prev).Error; err != nil {
		return nil, fmt.Errorf("failed to load superseded subscriptions: %w", err)
	}
	out := make([]*models.Subscription, 0, len(prev))
	for _, p := range prev {
		res := tx.WithContext(ctx).Model(&models.Subscription{}).
			Where("id = ? AND status = ?", p.ID, p.Status).
			Updates(map[string]any{"status": types.SubscriptionStatusExpired, "updated_at": now})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to supersede subscription %s: %w", p.ID, res.Error)
		}
		if res.RowsAffected > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

// RecordActivation writes the transition logs of a committed activation.
func (s *Service) RecordActivation(ctx context.Context, a *Activation) {
	if a == nil {
		return
	}
	extra := datatypes.JSONMap{}
	if a.Payment != nil {
		extra["gateway_payment_id"] = a.Payment.GatewayPaymentID
		extra["source"] = string(a.Payment.Source)
	}
	s.saveLog(ctx, a.Before, a.After, types.SubscriptionChangeReasonPurchase, extra)
	for _, p := range a.Superseded {
		after := p.Clone()
		after.Status = types.SubscriptionStatusExpired
		s.saveLog(ctx, p, after, types.SubscriptionChangeReasonSupersede, datatypes.JSONMap{"superseded_by": a.After.ID})
	}
}

// Cancel moves the business's ACTIVE subscription to CANCELLED. Access is kept
// until end_date. An empty subscriptionID targets the current subscription.
func (s *Service) Cancel(ctx context.Context, businessID, subscriptionID string) (*models.Subscription, error) {
	if businessID == "" {
		return nil, fmt.Errorf("%w: business id is required", billingerr.ErrInvalidInput)
	}
	var (
		sub *models.Subscription
		err error
	)
	if subscriptionID == "" {
		sub, err = s.Current(ctx, businessID)
	} else {
		sub, err = s.GetForBusiness(ctx, businessID, tool.CanonicalID(subscriptionID))
	}
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: business %s has no subscription", billingerr.ErrSubscriptionNotFound, businessID)
	}

	now := s.now()
	before := sub.Clone()
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND business_id = ? AND status = ? AND end_date > ?", sub.ID, businessID, types.SubscriptionStatusActive, now).
		Updates(map[string]any{
			"status":       types.SubscriptionStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: cancel %s in status %s", billingerr.ErrInvalidTransition, sub.ID, DisplayStatus(sub, now))
	}

	sub.Status = types.SubscriptionStatusCancelled
	sub.CancelledAt = &now
	sub.UpdatedAt = now
	logctx.FromCtx(ctx, s.log).Infow("subscription_cancelled", "subscription_id", sub.ID, "business_id", businessID)
	s.saveLog(ctx, before, sub.Clone(), types.SubscriptionChangeReasonCancel, datatypes.JSONMap{})
	if s.notifier != nil {
		s.notifier.Publish(ctx, &notification.Event{
			Type:           notification.EventSubscriptionCancelled,
			BusinessID:     businessID,
			SubscriptionID: sub.ID,
			OccurredAt:     now,
			Data: map[string]any{
				"plan_type": sub.PlanType,
				"end_date":  sub.EndDate,
			},
		})
	}
	return sub, nil
}

// ExpireIfLapsed persists EXPIRED for a record whose end_date has passed. It
// is best effort: failures are logged and the read continues.
func (s *Service) ExpireIfLapsed(ctx context.Context, sub *models.Subscription, now time.Time) bool {
	if sub == nil || sub.EndDate == nil || !sub.Status.GrantsAccess() || now.Before(*sub.EndDate) {
		return false
	}
	before := sub.Clone()
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND status IN ? AND end_date <= ?", sub.ID, accessStatuses, now).
		Updates(map[string]any{"status": types.SubscriptionStatusExpired, "updated_at": now})
	if res.Error != nil {
		logctx.FromCtx(ctx, s.log).Warnw("subscription_expire_failed", "subscription_id", sub.ID, "err", res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		return false
	}
	sub.Status = types.SubscriptionStatusExpired
	sub.UpdatedAt = now
	s.saveLog(ctx, before, sub.Clone(), types.SubscriptionChangeReasonExpire, datatypes.JSONMap{})
	return true
}

var accessStatuses = []types.SubscriptionStatus{types.SubscriptionStatusActive, types.SubscriptionStatusCancelled}

// saveLog writes a transition log in the background; errors are logged but
// not returned.
func (s *Service) saveLog(ctx context.Context, before, after *models.Subscription, reason types.SubscriptionChangeReason, extra datatypes.JSONMap) {
	if after == nil {
		return
	}
	if tid := logctx.TraceID(ctx); tid != "" {
		extra["trace_id"] = tid
	}
	entry := &models.SubscriptionLog{
		ID:             tool.GenerateUUIDV7(),
		BusinessID:     after.BusinessID,
		SubscriptionID: after.ID,
		Reason:         reason,
		Before:         datatypes.NewJSONType(before),
		After:          datatypes.NewJSONType(after),
		Extra:          extra,
	}
	lg := logctx.FromCtx(ctx, s.log)
	go func() {
		if err := s.db.Create(entry).Error; err != nil {
			lg.Errorw("subscription_log_save_failed", "subscription_id", entry.SubscriptionID, "reason", reason, "err", err)
		}
	}()
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
