package models

import (
	"fmt"
	"time"
)

// Invoice is issued once per activated subscription and never modified.
type Invoice struct {
	ID             string `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:varchar(64);not null;uniqueIndex" json:"subscription_id"`
	BusinessID     string `gorm:"column:business_id;type:varchar(64);not null;index:idx_business_id_number,priority:1" json:"business_id"`
	// InvoiceNumber is allocated from the invoice_sequence counter.
	InvoiceNumber    int64     `gorm:"column:invoice_number;type:bigint;not null;uniqueIndex;index:idx_business_id_number,priority:2" json:"invoice_number"`
	Amount           int64     `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency         string    `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	PlanType         string    `gorm:"column:plan_type;type:varchar(64);not null" json:"plan_type"`
	GatewayPaymentID string    `gorm:"column:gateway_payment_id;type:varchar(128);not null" json:"gateway_payment_id"`
	PeriodStart      time.Time `gorm:"column:period_start;not null" json:"period_start"`
	PeriodEnd        time.Time `gorm:"column:period_end;not null" json:"period_end"`
	IssuedAt         time.Time `gorm:"column:issued_at;not null;index" json:"issued_at"`
	CreatedAt        time.Time `json:"-"`
}

func (Invoice) TableName() string {
	return "invoice"
}

// DisplayNumber is the human-facing invoice number, e.g. INV-000042.
func (i *Invoice) DisplayNumber() string {
	return fmt.Sprintf("INV-%06d", i.InvoiceNumber)
}

// InvoiceDocument holds the rendered bytes of an invoice. A missing row or an
// empty Content means rendering has not completed yet.
type InvoiceDocument struct {
	InvoiceID      string     `gorm:"column:invoice_id;type:varchar(64);primary_key"`
	Content        []byte     `gorm:"column:content"`
	ContentType    string     `gorm:"column:content_type;type:varchar(64)"`
	RenderAttempts int        `gorm:"column:render_attempts;not null;default:0"`
	LastError      *string    `gorm:"column:last_error;type:text"`
	RenderedAt     *time.Time `gorm:"column:rendered_at;default:null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (InvoiceDocument) TableName() string {
	return "invoice_document"
}

func (d *InvoiceDocument) Ready() bool {
	return d != nil && len(d.Content) > 0
}

// InvoiceSequence is a named counter row. Incrementing it inside a
// transaction takes a row lock, which serializes number allocation.
type InvoiceSequence struct {
	Name  string `gorm:"column:name;type:varchar(64);primary_key"`
	Value int64  `gorm:"column:value;type:bigint;not null;default:0"`
}

func (InvoiceSequence) TableName() string {
	return "invoice_sequence"
}

const InvoiceSequenceName = "invoice_number"
