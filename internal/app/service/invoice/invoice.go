package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/tool"
	"github.com/fatflowers/cardbilling/pkg/types"
)

// Renderer turns an invoice into document bytes.
type Renderer interface {
	Render(inv *models.Invoice) ([]byte, error)
}

type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	renderer Renderer
	opts     renderOptions
	now      func() time.Time

	queue   chan string
	stopped chan struct{}
}

func NewService(cfg *cfgpkg.Config, db *gorm.DB, log *zap.SugaredLogger, renderer Renderer) *Service {
	opts := newRenderOptions(cfg.Invoice)
	return &Service{
		db:       db,
		log:      log,
		renderer: renderer,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
		queue:    make(chan string, opts.queueSize),
		stopped:  make(chan struct{}),
	}
}

// Issue returns the invoice of sub, creating it inside tx on first call. The
// invoice number comes from the sequence row, whose update lock serializes
// concurrent issuers.
func (s *Service) Issue(ctx context.Context, tx *gorm.DB, sub *models.Subscription, payment *models.SubscriptionPayment) (*models.Invoice, bool, error) {
	var existing []*models.Invoice
	if err := tx.WithContext(ctx).Where("subscription_id = ?", sub.ID).Limit(1).Find(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load invoice: %w", err)
	}
	if len(existing) > 0 {
		return existing[0], false, nil
	}

	number, err := s.nextNumber(ctx, tx)
	if err != nil {
		return nil, false, err
	}

	issuedAt := s.now()
	periodStart, periodEnd := issuedAt, issuedAt
	if sub.StartDate != nil {
		periodStart = *sub.StartDate
		issuedAt = *sub.StartDate
	}
	if sub.EndDate != nil {
		periodEnd = *sub.EndDate
	}
	inv := &models.Invoice{
		ID:             tool.GenerateUUIDV7(),
		SubscriptionID: sub.ID,
		BusinessID:     sub.BusinessID,
		InvoiceNumber:  number,
		Amount:         sub.Amount,
		Currency:       sub.Currency,
		PlanType:       sub.PlanType,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		IssuedAt:       issuedAt,
	}
	if payment != nil {
		inv.GatewayPaymentID = payment.GatewayPaymentID
	}
	if err := tx.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create invoice: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("invoice_issued", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber, "subscription_id", sub.ID)
	return inv, true, nil
}

func (s *Service) nextNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	res := tx.WithContext(ctx).Model(&models.InvoiceSequence{}).
		Where("name = ?", models.InvoiceSequenceName).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to allocate invoice number: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("invoice sequence %q is not seeded", models.InvoiceSequenceName)
	}
	var seq models.InvoiceSequence
	if err := tx.WithContext(ctx).Where("name = ?", models.InvoiceSequenceName).First(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to read invoice number: %w", err)
	}
	return seq.Value, nil
}

// Get loads an invoice by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice %s", billingerr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	return &inv, nil
}

// ListByBusiness returns the business's invoices, most recent first.
func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]*models.Invoice, error) {
	var invs []*models.Invoice
	if err := s.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("invoice_number desc").
		Find(&invs).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invs, nil
}

// Download returns the rendered document of an invoice owned by businessID.
// Missing bytes yield ErrRenderPending and queue the invoice for rendering.
func (s *Service) Download(ctx context.Context, businessID, invoiceID string) ([]byte, *models.Invoice, error) {
	invoiceID = tool.CanonicalID(invoiceID)
	var inv models.Invoice
	err := s.db.WithContext(ctx).Where("id = ? AND business_id = ?", invoiceID, businessID).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: invoice %s", billingerr.ErrNotFound, invoiceID)
		}
		return nil, nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	doc, err := s.document(ctx, inv.ID)
	if err != nil {
		return nil, nil, err
	}
	if !doc.Ready() {
		s.Enqueue(ctx, inv.ID)
		return nil, &inv, fmt.Errorf("%w: invoice %s", billingerr.ErrRenderPending, inv.ID)
	}
	return doc.Content, &inv, nil
}

func (s *Service) document(ctx context.Context, invoiceID string) (*models.InvoiceDocument, error) {
	var docs []*models.InvoiceDocument
	if err := s.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Limit(1).Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to load invoice document: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// ScanRequest is the admin invoice listing request.
type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Invoice `json:"items"`
	Total int64             `json:"total"`
}

// ScanColumns are the invoice columns admin filters and sorting may use.
var ScanColumns = []string{"id", "subscription_id", "business_id", "invoice_number", "amount", "currency", "plan_type", "issued_at"}

func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", billingerr.ErrInvalidInput)
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}
	for _, f := range req.Filters {
		if err := f.Validate(ScanColumns); err != nil {
			return nil, fmt.Errorf("%w: %v", billingerr.ErrInvalidInput, err)
		}
	}
	if req.SortBy != "" && !lo.Contains(ScanColumns, req.SortBy) {
		return nil, fmt.Errorf("%w: cannot sort by %s", billingerr.ErrInvalidInput, req.SortBy)
	}

	tx := s.db.WithContext(ctx).Model(&models.Invoice{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "invoice_number"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}})

	var rows []*models.Invoice
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return &ScanResponse{Items: rows, Total: total}, nil
}
