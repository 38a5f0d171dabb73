package attemptlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/internal/platform/db/dbtest"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/types"
)

func TestSave(t *testing.T) {
	gdb := dbtest.Open(t)
	svc := New(gdb, zap.NewNop().Sugar())
	ctx := logctx.WithTraceID(context.Background(), "trace-1")

	entry := &models.PaymentAttemptLog{
		Source:         types.PaymentSourceClient,
		GatewayOrderID: "order_1",
		Data:           JSON(map[string]string{"gateway_payment_id": "pay_1"}),
		Status:         models.PaymentAttemptLogStatusReceived,
	}
	<-svc.Save(ctx, entry)
	require.NotEmpty(t, entry.ID)

	entry.Status = models.PaymentAttemptLogStatusHandled
	result := JSON(map[string]bool{"replayed": false})
	entry.Result = &result
	<-svc.Save(ctx, entry)

	var stored models.PaymentAttemptLog
	require.NoError(t, gdb.First(&stored, "id = ?", entry.ID).Error)
	require.Equal(t, models.PaymentAttemptLogStatusHandled, stored.Status)
	require.Equal(t, "trace-1", stored.TraceID)
	require.JSONEq(t, `{"gateway_payment_id":"pay_1"}`, string(stored.Data))
	require.NotNil(t, stored.Result)

	<-svc.Save(ctx, nil)
}
