package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/internal/app/service/payment"
	"github.com/fatflowers/cardbilling/internal/platform/gateway"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/metrics"
	"github.com/fatflowers/cardbilling/pkg/types"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
)

type Verifier interface {
	VerifyWebhook(body []byte, signature string) bool
}

type Reconciler interface {
	ReconcileCaptured(ctx context.Context, c *payment.Capture) (*payment.VerificationResult, error)
}

type paymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Payload is the subset of the gateway webhook body the service reads.
type Payload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type Outcome struct {
	Event   string                      `json:"event"`
	Ignored bool                        `json:"ignored"`
	Result  *payment.VerificationResult `json:"result,omitempty"`
}

type Service struct {
	verifier   Verifier
	reconciler Reconciler
	log        *zap.SugaredLogger
}

func NewService(verifier Verifier, reconciler Reconciler, log *zap.SugaredLogger) *Service {
	return &Service{verifier: verifier, reconciler: reconciler, log: log}
}

// Handle authenticates a raw webhook body and settles the order it reports as
// paid. Events that carry no captured payment are acknowledged and ignored.
func (s *Service) Handle(ctx context.Context, body []byte, signature string) (*Outcome, error) {
	lg := logctx.FromCtx(ctx, s.log)
	if !s.verifier.VerifyWebhook(body, signature) {
		lg.Warnw("webhook_signature_invalid", "body_size", len(body))
		metrics.Inc(metrics.PaymentVerification, string(types.PaymentSourceWebhook), "rejected")
		return nil, fmt.Errorf("%w: webhook", billingerr.ErrSignatureInvalid)
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: webhook body: %v", billingerr.ErrInvalidInput, err)
	}

	switch p.Event {
	case EventPaymentCaptured, EventOrderPaid:
	default:
		lg.Infow("webhook_ignored", "event", p.Event)
		return &Outcome{Event: p.Event, Ignored: true}, nil
	}
	if p.Payload.Payment == nil || p.Payload.Payment.Entity.ID == "" || p.Payload.Payment.Entity.OrderID == "" {
		return nil, fmt.Errorf("%w: %s without payment entity", billingerr.ErrInvalidInput, p.Event)
	}

	entity := p.Payload.Payment.Entity
	lg.Infow("webhook_received", "event", p.Event, "gateway_order_id", entity.OrderID, "gateway_payment_id", entity.ID)
	res, err := s.reconciler.ReconcileCaptured(ctx, &payment.Capture{
		GatewayOrderID:   entity.OrderID,
		GatewayPaymentID: entity.ID,
		Amount:           entity.Amount,
		Currency:         entity.Currency,
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{Event: p.Event, Result: res}, nil
}

var Module = fx.Options(
	fx.Provide(func(signer *gateway.Signer, payments *payment.Service, log *zap.SugaredLogger) *Service {
		return NewService(signer, payments, log)
	}),
)
