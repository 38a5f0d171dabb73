package payment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/cardbilling/internal/app/service/attemptlog"
	"github.com/fatflowers/cardbilling/internal/app/service/invoice"
	"github.com/fatflowers/cardbilling/internal/app/service/notification"
	"github.com/fatflowers/cardbilling/internal/app/service/subscription"
	"github.com/fatflowers/cardbilling/internal/platform/gateway"
)

var Module = fx.Options(
	fx.Provide(func(
		db *gorm.DB,
		signer *gateway.Signer,
		subs *subscription.Service,
		invoices *invoice.Service,
		attempts *attemptlog.Service,
		notifier *notification.Notifier,
		log *zap.SugaredLogger,
	) *Service {
		return NewService(db, signer, subs, invoices, attempts, notifier, log)
	}),
)
