package subscription

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
)

// Create persists a new PENDING subscription.
func (s *Service) Create(ctx context.Context, sub *models.Subscription) error {
	if err := s.db.WithContext(ctx).Omit("PaymentHistory").Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetByGatewayOrderID loads the subscription opened for a gateway order within tx.
func (s *Service) GetByGatewayOrderID(ctx context.Context, tx *gorm.DB, gatewayOrderID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := tx.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&sub).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: gateway order %s", billingerr.ErrSubscriptionNotFound, gatewayOrderID)
		}
		return nil, fmt.Errorf("failed to load subscription by gateway order: %w", err)
	}
	return &sub, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", billingerr.ErrSubscriptionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// GetForBusiness loads a subscription owned by businessID. Records of other
// businesses are reported as not found.
func (s *Service) GetForBusiness(ctx context.Context, businessID, id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("id = ? AND business_id = ?", id, businessID).First(&sub).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", billingerr.ErrSubscriptionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// Current returns the subscription that represents the business right now:
// the most recently started one, or the most recent order when nothing was
// ever activated. It returns nil, nil for a business without history.
func (s *Service) Current(ctx context.Context, businessID string) (*models.Subscription, error) {
	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).
		Where("business_id = ? AND start_date IS NOT NULL", businessID).
		Order("start_date desc").Order("created_at desc").
		Limit(1).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to load current subscription: %w", err)
	}
	if len(subs) > 0 {
		return subs[0], nil
	}
	if err := s.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at desc").Order("id desc").
		Limit(1).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to load latest subscription: %w", err)
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return subs[0], nil
}

// PaymentHistory returns the payment entries of a subscription in the order
// they were made.
func (s *Service) PaymentHistory(ctx context.Context, subscriptionID string) ([]*models.SubscriptionPayment, error) {
	var entries []*models.SubscriptionPayment
	if err := s.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("date asc").Order("id asc").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load payment history: %w", err)
	}
	return entries, nil
}
