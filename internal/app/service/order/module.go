package order

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/internal/app/service/catalog"
	"github.com/fatflowers/cardbilling/internal/app/service/subscription"
	"github.com/fatflowers/cardbilling/internal/platform/gateway"
)

var Module = fx.Options(
	fx.Provide(
		func(c *catalog.Catalog, gw *gateway.Client, subs *subscription.Service, log *zap.SugaredLogger) *Service {
			return NewService(c, gw, subs, log)
		},
		NewJanitor,
	),
	fx.Invoke(registerJanitor),
)
