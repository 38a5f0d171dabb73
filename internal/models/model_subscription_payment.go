package models

import (
	"time"

	"github.com/fatflowers/cardbilling/pkg/types"
)

// SubscriptionPayment is an append-only payment history entry.
type SubscriptionPayment struct {
	ID               string              `gorm:"column:id;type:varchar(64);primary_key" json:"-"`
	SubscriptionID   string              `gorm:"column:subscription_id;type:varchar(64);not null;index" json:"-"`
	Date             time.Time           `gorm:"column:date;not null" json:"date"`
	GatewayPaymentID string              `gorm:"column:gateway_payment_id;type:varchar(128);not null" json:"gateway_payment_id"`
	Amount           int64               `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency         string              `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status           types.PaymentStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	Source           types.PaymentSource `gorm:"column:source;type:varchar(32);not null" json:"source"`
	CreatedAt        time.Time           `json:"-"`
}

func (SubscriptionPayment) TableName() string {
	return "subscription_payment"
}
