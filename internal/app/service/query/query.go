package query

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/internal/app/service/invoice"
	"github.com/fatflowers/cardbilling/internal/app/service/subscription"
	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/pkg/money"
	"github.com/fatflowers/cardbilling/pkg/tool"
	"github.com/fatflowers/cardbilling/pkg/types"
)

type Subscriptions interface {
	Current(ctx context.Context, businessID string) (*models.Subscription, error)
	PaymentHistory(ctx context.Context, subscriptionID string) ([]*models.SubscriptionPayment, error)
	ExpireIfLapsed(ctx context.Context, sub *models.Subscription, now time.Time) bool
	Now() time.Time
}

type Invoices interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*models.Invoice, error)
	Download(ctx context.Context, businessID, invoiceID string) ([]byte, *models.Invoice, error)
}

// SubscriptionView is a subscription as shown to its business, with access
// derived from end_date at read time.
type SubscriptionView struct {
	*models.Subscription
	Plan          *types.Plan              `json:"plan,omitempty"`
	IsActive      bool                     `json:"is_active"`
	DisplayStatus types.SubscriptionStatus `json:"display_status"`
	DaysRemaining int                      `json:"days_remaining"`
	AmountDisplay string                   `json:"amount_display"`
}

// Service answers read queries. Nothing is cached: every call reads the store.
type Service struct {
	subs     Subscriptions
	invoices Invoices
	log      *zap.SugaredLogger
}

func NewService(subs Subscriptions, invoices Invoices, log *zap.SugaredLogger) *Service {
	return &Service{subs: subs, invoices: invoices, log: log}
}

// GetCurrentSubscription returns the subscription that represents the
// business now, or nil when it never ordered one.
func (s *Service) GetCurrentSubscription(ctx context.Context, businessID string) (*SubscriptionView, error) {
	sub, err := s.subs.Current(ctx, businessID)
	if err != nil || sub == nil {
		return nil, err
	}
	now := s.subs.Now()
	s.subs.ExpireIfLapsed(ctx, sub, now)

	history, err := s.subs.PaymentHistory(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	sub.PaymentHistory = history

	view := &SubscriptionView{
		Subscription:  sub,
		Plan:          sub.Plan(),
		IsActive:      subscription.IsActive(sub, now),
		DisplayStatus: subscription.DisplayStatus(sub, now),
		AmountDisplay: money.Format(sub.Amount, sub.Currency),
	}
	if view.IsActive {
		view.DaysRemaining = subscription.DaysRemaining(*sub.EndDate, now)
	}
	return view, nil
}

// ListInvoices returns the invoices of a business, most recent first.
func (s *Service) ListInvoices(ctx context.Context, businessID string) ([]*models.Invoice, error) {
	return s.invoices.ListByBusiness(ctx, businessID)
}

// FindInvoiceForSubscription picks the invoice of subscriptionID from
// invoices. Without an exact match it falls back to the first invoice, which
// callers accept as "the latest invoice" of the business.
func FindInvoiceForSubscription(subscriptionID string, invoices []*models.Invoice) *models.Invoice {
	if len(invoices) == 0 {
		return nil
	}
	want := tool.CanonicalID(subscriptionID)
	if inv, ok := lo.Find(invoices, func(inv *models.Invoice) bool {
		return inv != nil && tool.CanonicalID(inv.SubscriptionID) == want
	}); ok {
		return inv
	}
	return invoices[0]
}

// DownloadInvoice returns the rendered document of an invoice owned by
// businessID.
func (s *Service) DownloadInvoice(ctx context.Context, businessID, invoiceID string) ([]byte, *models.Invoice, error) {
	return s.invoices.Download(ctx, businessID, invoiceID)
}

var Module = fx.Options(
	fx.Provide(func(subs *subscription.Service, invoices *invoice.Service, log *zap.SugaredLogger) *Service {
		return NewService(subs, invoices, log)
	}),
)
