package webhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/internal/app/service/payment"
	"github.com/fatflowers/cardbilling/internal/platform/gateway"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/types"
)

type stubReconciler struct {
	captures []*payment.Capture
	err      error
}

func (r *stubReconciler) ReconcileCaptured(_ context.Context, c *payment.Capture) (*payment.VerificationResult, error) {
	r.captures = append(r.captures, c)
	if r.err != nil {
		return nil, r.err
	}
	return &payment.VerificationResult{SubscriptionID: "sub-1", Status: types.SubscriptionStatusActive}, nil
}

const capturedBody = `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","amount":2999,"currency":"INR","status":"captured"}}}}`

func TestHandle(t *testing.T) {
	signer := gateway.NewSigner(&cfgpkg.Config{Gateway: cfgpkg.GatewayConfig{WebhookSecret: "hook-secret"}})

	tests := []struct {
		name      string
		body      string
		signature string
		recErr    error
		wantErr   error
		ignored   bool
		captured  bool
	}{
		{name: "captured payment", body: capturedBody, captured: true},
		{name: "order paid", body: `{"event":"order.paid","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`, captured: true},
		{name: "bad signature", body: capturedBody, signature: "deadbeef", wantErr: billingerr.ErrSignatureInvalid},
		{name: "unrelated event", body: `{"event":"refund.created","payload":{}}`, ignored: true},
		{name: "malformed body", body: `{"event":`, wantErr: billingerr.ErrInvalidInput},
		{name: "missing entity", body: `{"event":"payment.captured","payload":{}}`, wantErr: billingerr.ErrInvalidInput},
		{name: "unknown order", body: capturedBody, recErr: billingerr.ErrSubscriptionNotFound, wantErr: billingerr.ErrSubscriptionNotFound, captured: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &stubReconciler{err: tt.recErr}
			svc := NewService(signer, rec, zap.NewNop().Sugar())

			sig := tt.signature
			if sig == "" {
				sig = signer.SignWebhook([]byte(tt.body))
			}
			out, err := svc.Handle(context.Background(), []byte(tt.body), sig)
			if tt.captured {
				require.Len(t, rec.captures, 1)
				require.Equal(t, "order_1", rec.captures[0].GatewayOrderID)
				require.Equal(t, "pay_1", rec.captures[0].GatewayPaymentID)
			} else {
				require.Empty(t, rec.captures)
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.ignored, out.Ignored)
			if !tt.ignored {
				require.Equal(t, "sub-1", out.Result.SubscriptionID)
			}
		})
	}
}
