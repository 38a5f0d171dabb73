package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/cardbilling/internal/app/service/notification"
	"github.com/fatflowers/cardbilling/internal/app/service/subscription"
	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/metrics"
	"github.com/fatflowers/cardbilling/pkg/tool"
	"github.com/fatflowers/cardbilling/pkg/types"
)

type Signer interface {
	VerifyPayment(orderID, paymentID, signature string) bool
}

type Subscriptions interface {
	GetByID(ctx context.Context, id string) (*models.Subscription, error)
	GetByGatewayOrderID(ctx context.Context, tx *gorm.DB, gatewayOrderID string) (*models.Subscription, error)
	Activate(ctx context.Context, tx *gorm.DB, sub *models.Subscription, payment *models.SubscriptionPayment, now time.Time) (*subscription.Activation, error)
	RecordActivation(ctx context.Context, a *subscription.Activation)
}

type Invoices interface {
	Get(ctx context.Context, id string) (*models.Invoice, error)
	Issue(ctx context.Context, tx *gorm.DB, sub *models.Subscription, payment *models.SubscriptionPayment) (*models.Invoice, bool, error)
	Enqueue(ctx context.Context, invoiceID string)
}

type AttemptLogger interface {
	Save(ctx context.Context, entry *models.PaymentAttemptLog) <-chan struct{}
}

type Publisher interface {
	Publish(ctx context.Context, ev *notification.Event) <-chan struct{}
}

// Service reconciles payment proofs with pending subscriptions. A gateway
// order is settled at most once: the verification row keyed by the order id
// is the check-and-set, and every later proof for that order replays the
// stored result.
type Service struct {
	db       *gorm.DB
	signer   Signer
	subs     Subscriptions
	invoices Invoices
	attempts AttemptLogger
	notifier Publisher
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewService(db *gorm.DB, signer Signer, subs Subscriptions, invoices Invoices, attempts AttemptLogger, notifier Publisher, log *zap.SugaredLogger) *Service {
	return &Service{
		db:       db,
		signer:   signer,
		subs:     subs,
		invoices: invoices,
		attempts: attempts,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type VerifyRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
	// BusinessID, when set, must own the subscription behind the order.
	BusinessID string `json:"-"`
}

type VerificationResult struct {
	SubscriptionID string                   `json:"subscription_id"`
	Status         types.SubscriptionStatus `json:"status"`
	StartDate      *time.Time               `json:"start_date"`
	EndDate        *time.Time               `json:"end_date"`
	InvoiceID      string                   `json:"invoice_id"`
	InvoiceNumber  int64                    `json:"invoice_number"`
	Replayed       bool                     `json:"replayed"`

	// verifiedPaymentID is set on a replay whose proof names a payment other
	// than the one the order was settled with.
	verifiedPaymentID string
}

// Capture is a payment proven by some channel other than the client
// signature, e.g. a signed gateway webhook.
type Capture struct {
	GatewayOrderID   string
	GatewayPaymentID string
	// Amount and Currency are checked against the order when non-zero.
	Amount   int64
	Currency string
}

var errAlreadyVerified = errors.New("gateway order already verified")

// Verify checks the client's payment proof and activates the subscription
// opened for the order.
func (s *Service) Verify(ctx context.Context, req *VerifyRequest) (*VerificationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", billingerr.ErrInvalidInput)
	}
	req.GatewayOrderID = strings.TrimSpace(req.GatewayOrderID)
	req.GatewayPaymentID = strings.TrimSpace(req.GatewayPaymentID)
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
		return nil, fmt.Errorf("%w: gateway_order_id, gateway_payment_id and signature are required", billingerr.ErrInvalidInput)
	}

	attempt := &models.PaymentAttemptLog{
		Source:           types.PaymentSourceClient,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Data:             attemptData(req),
		Status:           models.PaymentAttemptLogStatusReceived,
	}
	if req.BusinessID != "" {
		attempt.BusinessID = &req.BusinessID
	}

	if !s.signer.VerifyPayment(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		logctx.FromCtx(ctx, s.log).Warnw("payment_signature_invalid",
			"gateway_order_id", req.GatewayOrderID,
			"gateway_payment_id", req.GatewayPaymentID,
			"business_id", req.BusinessID,
		)
		attempt.Status = models.PaymentAttemptLogStatusRejected
		s.attempts.Save(ctx, attempt)
		metrics.Inc(metrics.PaymentVerification, string(types.PaymentSourceClient), "rejected")
		return nil, fmt.Errorf("%w: order %s", billingerr.ErrSignatureInvalid, req.GatewayOrderID)
	}

	return s.settle(ctx, attempt, req.BusinessID, 0, "")
}

// ReconcileCaptured settles an order whose payment was reported by the
// gateway itself. It shares the idempotent path with Verify, so a webhook and
// a client proof for the same order activate it once.
func (s *Service) ReconcileCaptured(ctx context.Context, c *Capture) (*VerificationResult, error) {
	if c == nil || c.GatewayOrderID == "" || c.GatewayPaymentID == "" {
		return nil, fmt.Errorf("%w: gateway order and payment ids are required", billingerr.ErrInvalidInput)
	}
	attempt := &models.PaymentAttemptLog{
		Source:           types.PaymentSourceWebhook,
		GatewayOrderID:   c.GatewayOrderID,
		GatewayPaymentID: c.GatewayPaymentID,
		Data:             attemptData(c),
		Status:           models.PaymentAttemptLogStatusReceived,
	}
	return s.settle(ctx, attempt, "", c.Amount, c.Currency)
}

func (s *Service) settle(ctx context.Context, attempt *models.PaymentAttemptLog, businessID string, amount int64, currency string) (*VerificationResult, error) {
	lg := logctx.FromCtx(ctx, s.log)
	attempt.ID = tool.GenerateUUIDV7()
	received := s.attempts.Save(ctx, copyAttempt(attempt))

	if res, err := s.replay(ctx, attempt.GatewayOrderID, attempt.GatewayPaymentID, businessID); res != nil || err != nil {
		s.finish(ctx, received, attempt, res, err)
		return res, err
	}

	now := s.now()
	record := &models.PaymentVerification{
		GatewayOrderID:   attempt.GatewayOrderID,
		GatewayPaymentID: attempt.GatewayPaymentID,
		Source:           attempt.Source,
		VerifiedAt:       now,
	}
	var (
		activation *subscription.Activation
		invoice    *models.Invoice
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
		if res.Error != nil {
			return fmt.Errorf("failed to record verification: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errAlreadyVerified
		}

		sub, err := s.subs.GetByGatewayOrderID(ctx, tx, attempt.GatewayOrderID)
		if err != nil {
			return err
		}
		if businessID != "" && sub.BusinessID != businessID {
			return fmt.Errorf("%w: order %s", billingerr.ErrSubscriptionNotFound, attempt.GatewayOrderID)
		}
		if sub.Status != types.SubscriptionStatusPending {
			return fmt.Errorf("%w: order %s is %s", billingerr.ErrSubscriptionNotFound, attempt.GatewayOrderID, sub.Status)
		}
		if amount > 0 && (amount != sub.Amount || !strings.EqualFold(currency, sub.Currency)) {
			return fmt.Errorf("%w: captured %d %s for order of %d %s", billingerr.ErrInvalidInput, amount, currency, sub.Amount, sub.Currency)
		}

		payment := &models.SubscriptionPayment{
			Date:             now,
			GatewayPaymentID: attempt.GatewayPaymentID,
			Amount:           sub.Amount,
			Currency:         sub.Currency,
			Source:           attempt.Source,
		}
		activation, err = s.subs.Activate(ctx, tx, sub, payment, now)
		if err != nil {
			return err
		}
		invoice, _, err = s.invoices.Issue(ctx, tx, sub, payment)
		if err != nil {
			return err
		}
		return tx.Model(record).Updates(map[string]any{
			"subscription_id": sub.ID,
			"invoice_id":      invoice.ID,
		}).Error
	})
	if errors.Is(err, errAlreadyVerified) {
		res, rerr := s.replay(ctx, attempt.GatewayOrderID, attempt.GatewayPaymentID, businessID)
		if res == nil && rerr == nil {
			rerr = fmt.Errorf("verification of order %s is not visible", attempt.GatewayOrderID)
		}
		s.finish(ctx, received, attempt, res, rerr)
		return res, rerr
	}
	if err != nil {
		lg.Errorw("payment_settle_failed", "gateway_order_id", attempt.GatewayOrderID, "source", attempt.Source, "err", err)
		s.finish(ctx, received, attempt, nil, err)
		return nil, err
	}

	sub := activation.After
	res := &VerificationResult{
		SubscriptionID: sub.ID,
		Status:         sub.Status,
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
		InvoiceID:      invoice.ID,
		InvoiceNumber:  invoice.InvoiceNumber,
	}
	lg.Infow("payment_verified",
		"gateway_order_id", attempt.GatewayOrderID,
		"gateway_payment_id", attempt.GatewayPaymentID,
		"subscription_id", sub.ID,
		"invoice_number", invoice.InvoiceNumber,
		"source", attempt.Source,
	)

	// Nothing below may undo the committed activation.
	s.subs.RecordActivation(ctx, activation)
	s.invoices.Enqueue(ctx, invoice.ID)
	s.notifier.Publish(ctx, &notification.Event{
		Type:           notification.EventSubscriptionActivated,
		BusinessID:     sub.BusinessID,
		SubscriptionID: sub.ID,
		InvoiceID:      invoice.ID,
		InvoiceNumber:  invoice.InvoiceNumber,
		OccurredAt:     now,
		Data: map[string]any{
			"plan_type": sub.PlanType,
			"amount":    sub.Amount,
			"currency":  sub.Currency,
			"end_date":  sub.EndDate,
		},
	})
	metrics.Inc(metrics.InvoicesIssued, invoice.Currency)
	s.finish(ctx, received, attempt, res, nil)
	return res, nil
}

// replay returns the stored result when the order was already verified, or
// nil, nil when it was not. A proof carrying another payment id still replays
// but is flagged, since the order may have been captured twice.
func (s *Service) replay(ctx context.Context, gatewayOrderID, gatewayPaymentID, businessID string) (*VerificationResult, error) {
	var records []*models.PaymentVerification
	if err := s.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).Limit(1).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load verification: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	record := records[0]
	sub, err := s.subs.GetByID(ctx, record.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if businessID != "" && sub.BusinessID != businessID {
		return nil, fmt.Errorf("%w: order %s", billingerr.ErrSubscriptionNotFound, gatewayOrderID)
	}
	inv, err := s.invoices.Get(ctx, record.InvoiceID)
	if err != nil {
		return nil, err
	}
	lg := logctx.FromCtx(ctx, s.log)
	lg.Infow("payment_verification_replayed", "gateway_order_id", gatewayOrderID, "subscription_id", sub.ID)
	res := &VerificationResult{
		SubscriptionID: sub.ID,
		Status:         sub.Status,
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
		InvoiceID:      inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		Replayed:       true,
	}
	if gatewayPaymentID != record.GatewayPaymentID {
		lg.Warnw("payment_id_mismatch",
			"gateway_order_id", gatewayOrderID,
			"gateway_payment_id", gatewayPaymentID,
			"verified_gateway_payment_id", record.GatewayPaymentID,
			"subscription_id", sub.ID,
		)
		res.verifiedPaymentID = record.GatewayPaymentID
	}
	return res, nil
}

// replayMismatch is the attempt log result of a replay for another payment.
type replayMismatch struct {
	*VerificationResult
	PaymentIDMismatch        bool   `json:"payment_id_mismatch"`
	VerifiedGatewayPaymentID string `json:"verified_gateway_payment_id"`
}

// finish records the outcome on the attempt row once the received entry has
// been written, so the final status is never overwritten.
func (s *Service) finish(ctx context.Context, received <-chan struct{}, attempt *models.PaymentAttemptLog, res *VerificationResult, err error) {
	entry := copyAttempt(attempt)
	outcome := "activated"
	switch {
	case err != nil:
		entry.Status = models.PaymentAttemptLogStatusHandleFailed
		result := attemptData(map[string]string{"error": err.Error()})
		entry.Result = &result
		outcome = "failed"
	default:
		entry.Status = models.PaymentAttemptLogStatusHandled
		var result datatypes.JSON
		if res.verifiedPaymentID != "" {
			result = attemptData(&replayMismatch{VerificationResult: res, PaymentIDMismatch: true, VerifiedGatewayPaymentID: res.verifiedPaymentID})
		} else {
			result = attemptData(res)
		}
		entry.Result = &result
		if res.Replayed {
			outcome = "replayed"
		}
	}
	go func() {
		<-received
		s.attempts.Save(ctx, entry)
	}()
	metrics.Inc(metrics.PaymentVerification, string(attempt.Source), outcome)
}

func copyAttempt(a *models.PaymentAttemptLog) *models.PaymentAttemptLog {
	cp := *a
	return &cp
}
