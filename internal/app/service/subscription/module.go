package subscription

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/cardbilling/internal/app/service/notification"
)

// Module exposes the subscription service via Fx.
var Module = fx.Options(
	fx.Provide(func(db *gorm.DB, log *zap.SugaredLogger, notifier *notification.Notifier) *Service {
		return NewService(db, log, notifier)
	}),
)
