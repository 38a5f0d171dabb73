package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/internal/platform/gateway"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/tool"
	"github.com/fatflowers/cardbilling/pkg/types"
)

type PlanResolver interface {
	Resolve(key string) (*types.Plan, error)
}

type Gateway interface {
	OpenOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error)
	KeyID() string
}

type SubscriptionStore interface {
	Create(ctx context.Context, sub *models.Subscription) error
}

type Service struct {
	plans   PlanResolver
	gateway Gateway
	subs    SubscriptionStore
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewService(plans PlanResolver, gw Gateway, subs SubscriptionStore, log *zap.SugaredLogger) *Service {
	return &Service{plans: plans, gateway: gw, subs: subs, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// CreateOrderResult is what the client needs to open the gateway checkout.
type CreateOrderResult struct {
	GatewayOrder *gateway.Order       `json:"gateway_order"`
	Subscription *models.Subscription `json:"subscription"`
	// KeyID is the gateway's public key for checkout initialization.
	KeyID string `json:"key_id"`
}

// CreateOrder opens a gateway order for planType and records a PENDING
// subscription. A current ACTIVE subscription is left untouched until the new
// one activates. Nothing is persisted when the gateway fails.
func (s *Service) CreateOrder(ctx context.Context, businessID, planType string) (*CreateOrderResult, error) {
	businessID = strings.TrimSpace(businessID)
	if businessID == "" {
		return nil, fmt.Errorf("%w: business id is required", billingerr.ErrInvalidInput)
	}
	plan, err := s.plans.Resolve(planType)
	if err != nil {
		return nil, err
	}

	receipt := tool.GenerateReceipt()
	gwOrder, err := s.gateway.OpenOrder(ctx, gateway.OrderRequest{
		Amount:   plan.Amount,
		Currency: plan.Currency,
		Receipt:  receipt,
		Notes:    map[string]string{"business_id": businessID, "plan_type": plan.Key},
	})
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		ID:             tool.GenerateUUIDV7(),
		BusinessID:     businessID,
		PlanType:       plan.Key,
		Status:         types.SubscriptionStatusPending,
		Amount:         plan.Amount,
		Currency:       plan.Currency,
		GatewayOrderID: gwOrder.ID,
		PlanSnapshot:   datatypes.NewJSONType(plan),
		CreatedAt:      s.now(),
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("order_created",
		"subscription_id", sub.ID,
		"gateway_order_id", gwOrder.ID,
		"plan_type", plan.Key,
		"amount", plan.Amount,
		"currency", plan.Currency,
		"receipt", receipt,
	)
	return &CreateOrderResult{GatewayOrder: gwOrder, Subscription: sub, KeyID: s.gateway.KeyID()}, nil
}
