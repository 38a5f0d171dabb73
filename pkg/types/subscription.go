package types

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "PENDING"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

// GrantsAccess reports whether a record in this status can still grant access
// until its end date.
func (s SubscriptionStatus) GrantsAccess() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusCancelled
}

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonPurchase  SubscriptionChangeReason = "purchase"
	SubscriptionChangeReasonCancel    SubscriptionChangeReason = "cancel"
	SubscriptionChangeReasonExpire    SubscriptionChangeReason = "expire"
	SubscriptionChangeReasonSupersede SubscriptionChangeReason = "supersede"
	SubscriptionChangeReasonAbandon   SubscriptionChangeReason = "abandon"
)

type PaymentStatus string

const (
	PaymentStatusPaid PaymentStatus = "paid"
)

// PaymentSource tells how a payment proof reached the engine.
type PaymentSource string

const (
	PaymentSourceClient  PaymentSource = "client"
	PaymentSourceWebhook PaymentSource = "webhook"
)
