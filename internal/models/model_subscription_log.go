package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/cardbilling/pkg/types"
)

// SubscriptionLog records every subscription transition for troubleshooting.
type SubscriptionLog struct {
	ID             string                            `gorm:"column:id;type:varchar(64);primary_key"`
	BusinessID     string                            `gorm:"column:business_id;type:varchar(64);index:idx_business_id_id,priority:1;not null"`
	SubscriptionID string                            `gorm:"column:subscription_id;type:varchar(64);index;not null"`
	Reason         types.SubscriptionChangeReason    `gorm:"column:reason;type:varchar(64);not null"`
	Before         datatypes.JSONType[*Subscription] `gorm:"column:before"`
	After          datatypes.JSONType[*Subscription] `gorm:"column:after"`
	// Extra carries the trigger context, e.g. trace_id or gateway_payment_id.
	Extra     datatypes.JSONMap `gorm:"column:extra"`
	CreatedAt time.Time
}

func (SubscriptionLog) TableName() string {
	return "subscription_log"
}
