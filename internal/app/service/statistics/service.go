package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	"github.com/fatflowers/cardbilling/pkg/types"
)

type StatisticType string

const (
	StatisticTypeDailyInvoiceCount         StatisticType = "daily_invoice_count"
	StatisticTypeDailyRevenue              StatisticType = "daily_revenue"
	StatisticTypeTotalRevenue              StatisticType = "total_revenue"
	StatisticTypeDailyNewSubscriptionCount StatisticType = "daily_new_subscription_count"
	StatisticTypeActiveSubscriptionCount   StatisticType = "active_subscription_count"
)

// FilterColumns are the columns shared by the invoice and subscription tables.
var FilterColumns = []string{"business_id", "plan_type", "currency"}

type StatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type StatisticRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*StatisticDataItem  `json:"data_items"`
}

func (r *StatisticRequest) Validate() error {
	if r == nil || len(r.DataItems) == 0 {
		return fmt.Errorf("%w: data_items is required", billingerr.ErrInvalidInput)
	}
	for _, f := range r.Filters {
		if err := f.Validate(FilterColumns); err != nil {
			return fmt.Errorf("%w: %v", billingerr.ErrInvalidInput, err)
		}
	}
	return nil
}

func (r *StatisticRequest) where() clause.Where {
	return clause.Where{Exprs: []clause.Expression{types.FiltersAnd(r.Filters)}}
}

type StatisticResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type StatisticResponse struct {
	DataItems map[StatisticType][]StatisticResponseDataItem `json:"data_items"`
}

// Service computes admin billing statistics straight from the invoice and
// subscription tables.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Service {
	return &Service{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// day returns the SQL expression of the UTC calendar day of column.
func (s *Service) day(column string) string {
	return dayExpr(s.db.Dialector.Name(), column)
}

func dayExpr(dialect, column string) string {
	if dialect == "postgres" {
		// timestamptz renders in the session time zone unless pinned.
		return fmt.Sprintf("TO_CHAR(%s AT TIME ZONE 'UTC', 'YYYY-MM-DD')", column)
	}
	// SQLite keeps timestamps as UTC "YYYY-MM-DD HH:MM:SS..." text.
	return fmt.Sprintf("substr(%s, 1, 10)", column)
}

func (s *Service) getDailyInvoiceCount(ctx context.Context, r *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	day := s.day("issued_at")
	err := s.db.WithContext(ctx).Table(models.Invoice{}.TableName()).
		Select(day + " AS date, count(*) AS value").
		Where(r.where()).
		Group(day).
		Order("date").
		Find(&results).Error
	return results, err
}

func (s *Service) getDailyRevenue(ctx context.Context, r *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	day := s.day("issued_at")
	err := s.db.WithContext(ctx).Table(models.Invoice{}.TableName()).
		Select(day + " AS date, currency AS label, sum(amount) AS value").
		Where(r.where()).
		Group(day).
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true}).
		Order("label").
		Find(&results).Error
	return results, err
}

func (s *Service) getTotalRevenue(ctx context.Context, r *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	err := s.db.WithContext(ctx).Table(models.Invoice{}.TableName()).
		Select("currency AS label, sum(amount) AS value").
		Where(r.where()).
		Group("currency").
		Order("label").
		Find(&results).Error
	return results, err
}

func (s *Service) getDailyNewSubscriptionCount(ctx context.Context, r *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	day := s.day("start_date")
	err := s.db.WithContext(ctx).Table(models.Subscription{}.TableName()).
		Select(day + " AS date, count(DISTINCT business_id) AS value").
		Where("start_date IS NOT NULL").
		Where(r.where()).
		Group(day).
		Order("date").
		Find(&results).Error
	return results, err
}

func (s *Service) getActiveSubscriptionCount(ctx context.Context, r *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	err := s.db.WithContext(ctx).Table(models.Subscription{}.TableName()).
		Select("plan_type AS label, count(*) AS value").
		Where("status IN ?", []types.SubscriptionStatus{types.SubscriptionStatusActive, types.SubscriptionStatusCancelled}).
		Where("end_date > ?", s.now()).
		Where(r.where()).
		Group("plan_type").
		Order("label").
		Find(&results).Error
	return results, err
}

func (s *Service) getStatistic(ctx context.Context, r *StatisticRequest, item *StatisticDataItem) ([]StatisticResponseDataItem, error) {
	switch item.ID {
	case StatisticTypeDailyInvoiceCount:
		return s.getDailyInvoiceCount(ctx, r)
	case StatisticTypeDailyRevenue:
		return s.getDailyRevenue(ctx, r)
	case StatisticTypeTotalRevenue:
		return s.getTotalRevenue(ctx, r)
	case StatisticTypeDailyNewSubscriptionCount:
		return s.getDailyNewSubscriptionCount(ctx, r)
	case StatisticTypeActiveSubscriptionCount:
		return s.getActiveSubscriptionCount(ctx, r)
	default:
		return nil, fmt.Errorf("%w: invalid data item id: %s", billingerr.ErrInvalidInput, item.ID)
	}
}

// GetBillingStatistic computes every requested data item concurrently.
func (s *Service) GetBillingStatistic(ctx context.Context, r *StatisticRequest) (*StatisticResponse, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make(map[StatisticType][]StatisticResponseDataItem, len(r.DataItems))
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range r.DataItems {
		if item == nil {
			continue
		}
		item := item
		g.Go(func() error {
			res, err := s.getStatistic(gctx, r, item)
			if err != nil {
				return fmt.Errorf("statistic %s: %w", item.ID, err)
			}
			mu.Lock()
			results[item.ID] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &StatisticResponse{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
