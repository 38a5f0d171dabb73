package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/cardbilling/internal/app/api/server"
	"github.com/fatflowers/cardbilling/internal/app/service/attemptlog"
	"github.com/fatflowers/cardbilling/internal/app/service/catalog"
	"github.com/fatflowers/cardbilling/internal/app/service/invoice"
	"github.com/fatflowers/cardbilling/internal/app/service/notification"
	"github.com/fatflowers/cardbilling/internal/app/service/order"
	"github.com/fatflowers/cardbilling/internal/app/service/payment"
	"github.com/fatflowers/cardbilling/internal/app/service/query"
	"github.com/fatflowers/cardbilling/internal/app/service/statistics"
	"github.com/fatflowers/cardbilling/internal/app/service/subscription"
	"github.com/fatflowers/cardbilling/internal/app/service/webhook"
	"github.com/fatflowers/cardbilling/internal/platform/db"
	"github.com/fatflowers/cardbilling/internal/platform/gateway"
	"github.com/fatflowers/cardbilling/internal/platform/pdf"
	"github.com/fatflowers/cardbilling/internal/platform/redis"
	"github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	redis.Module,
	gateway.Module,
	pdf.Module,
	catalog.Module,
	subscription.Module,
	invoice.Module,
	order.Module,
	notification.Module,
	attemptlog.Module,
	payment.Module,
	webhook.Module,
	query.Module,
	statistics.Module,
	server.Module,
)
