package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/cardbilling/pkg/types"
)

// Subscription is one billing period of a business, from the gateway order
// that created it to its expiry.
type Subscription struct {
	ID         string                   `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	BusinessID string                   `gorm:"column:business_id;type:varchar(64);not null;index:idx_business_id_created_at,priority:1" json:"business_id"`
	PlanType   string                   `gorm:"column:plan_type;type:varchar(64);not null" json:"plan_type"`
	Status     types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	Amount     int64                    `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency   string                   `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	// StartDate and EndDate are set on activation.
	StartDate      *time.Time `gorm:"column:start_date;default:null" json:"start_date"`
	EndDate        *time.Time `gorm:"column:end_date;default:null" json:"end_date"`
	GatewayOrderID string     `gorm:"column:gateway_order_id;type:varchar(128);not null;uniqueIndex" json:"gateway_order_id"`
	CancelledAt    *time.Time `gorm:"column:cancelled_at;default:null" json:"cancelled_at"`
	// PlanSnapshot freezes the plan as it was when the order was opened.
	PlanSnapshot datatypes.JSONType[*types.Plan] `gorm:"column:plan_snapshot" json:"-"`
	CreatedAt    time.Time                       `gorm:"index:idx_business_id_created_at,priority:2" json:"created_at"`
	UpdatedAt    time.Time                       `json:"updated_at"`

	PaymentHistory []*SubscriptionPayment `gorm:"foreignKey:SubscriptionID;references:ID" json:"payment_history"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Plan returns the plan snapshot taken when the order was opened.
func (s *Subscription) Plan() *types.Plan {
	if s == nil {
		return nil
	}
	return s.PlanSnapshot.Data()
}

// Clone returns a shallow copy suitable for before/after snapshots.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	c := *s
	c.PaymentHistory = nil
	return &c
}
