package attemptlog

import (
	"context"
	"encoding/json"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a payment attempt log. Nil input is ignored.
// The returned channel is closed once the write has finished.
func (s *Service) Save(ctx context.Context, entry *models.PaymentAttemptLog) <-chan struct{} {
	done := make(chan struct{})
	if entry == nil {
		close(done)
		return done
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	if entry.TraceID == "" {
		entry.TraceID = logctx.TraceID(ctx)
	}
	lg := logctx.FromCtx(ctx, s.log)
	go func() {
		defer close(done)
		if err := s.db.Save(entry).Error; err != nil {
			lg.Errorw("payment_attempt_log_save_failed", "gateway_order_id", entry.GatewayOrderID, "err", err)
		}
	}()
	return done
}

// JSON encodes v for the Data and Result columns. Encoding failures yield nil.
func JSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

var Module = fx.Options(
	fx.Provide(New),
)
