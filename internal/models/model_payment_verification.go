package models

import (
	"time"

	"github.com/fatflowers/cardbilling/pkg/types"
)

// PaymentVerification marks a gateway order as verified. The primary key makes
// the first insert win under concurrent verification of the same order.
type PaymentVerification struct {
	GatewayOrderID   string              `gorm:"column:gateway_order_id;type:varchar(128);primary_key"`
	GatewayPaymentID string              `gorm:"column:gateway_payment_id;type:varchar(128);not null"`
	SubscriptionID   string              `gorm:"column:subscription_id;type:varchar(64)"`
	InvoiceID        string              `gorm:"column:invoice_id;type:varchar(64)"`
	Source           types.PaymentSource `gorm:"column:source;type:varchar(32);not null"`
	VerifiedAt       time.Time           `gorm:"column:verified_at;not null"`
	CreatedAt        time.Time
}

func (PaymentVerification) TableName() string {
	return "payment_verification"
}
