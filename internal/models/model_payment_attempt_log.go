package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/cardbilling/pkg/types"
)

type PaymentAttemptLogStatus string

const (
	PaymentAttemptLogStatusReceived     PaymentAttemptLogStatus = "received"
	PaymentAttemptLogStatusHandled      PaymentAttemptLogStatus = "handled"
	PaymentAttemptLogStatusHandleFailed PaymentAttemptLogStatus = "handle_failed"
	// PaymentAttemptLogStatusRejected marks a proof with a bad signature.
	PaymentAttemptLogStatusRejected PaymentAttemptLogStatus = "rejected"
)

// PaymentAttemptLog keeps every payment proof the engine received, for fraud
// review and reconciliation.
type PaymentAttemptLog struct {
	ID               string                  `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	Source           types.PaymentSource     `gorm:"column:source;type:varchar(32);not null" json:"source"`
	BusinessID       *string                 `gorm:"column:business_id;type:varchar(64)" json:"business_id"`
	TraceID          string                  `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	GatewayOrderID   string                  `gorm:"column:gateway_order_id;type:varchar(128);index" json:"gateway_order_id"`
	GatewayPaymentID string                  `gorm:"column:gateway_payment_id;type:varchar(128)" json:"gateway_payment_id"`
	Data             datatypes.JSON          `gorm:"column:data" json:"data"`
	Result           *datatypes.JSON         `gorm:"column:result" json:"result"`
	Status           PaymentAttemptLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func (PaymentAttemptLog) TableName() string { return "payment_attempt_log" }
