package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/docs"
	"github.com/fatflowers/cardbilling/internal/app/api/handlers"
	mw "github.com/fatflowers/cardbilling/internal/app/api/middleware"
	"github.com/fatflowers/cardbilling/internal/app/service/catalog"
	"github.com/fatflowers/cardbilling/internal/app/service/invoice"
	"github.com/fatflowers/cardbilling/internal/app/service/order"
	"github.com/fatflowers/cardbilling/internal/app/service/payment"
	"github.com/fatflowers/cardbilling/internal/app/service/query"
	"github.com/fatflowers/cardbilling/internal/app/service/statistics"
	"github.com/fatflowers/cardbilling/internal/app/service/subscription"
	"github.com/fatflowers/cardbilling/internal/app/service/webhook"
	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func newBillingServices(
	plans *catalog.Catalog,
	orders *order.Service,
	payments *payment.Service,
	subs *subscription.Service,
	q *query.Service,
	log *zap.SugaredLogger,
) *handlers.BillingServices {
	return &handlers.BillingServices{
		Plans:         plans,
		Orders:        orders,
		Payments:      payments,
		Subscriptions: subs,
		Query:         q,
		Log:           log,
	}
}

func registerRoutes(
	lc fx.Lifecycle,
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	billing *handlers.BillingServices,
	hooks *webhook.Service,
	invoices *invoice.Service,
	stats *statistics.Service,
) {
	// Prometheus metrics
	if cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(log, cfg.MetricsAddr)
		p.Use(r)
		if srv := p.Server(); srv != nil {
			lc.Append(fx.StopHook(func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			}))
		}
		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())

	// Business APIs resolve the caller before anything else runs.
	billingGroup := apiV1.Group("/billing")
	billingGroup.Use(mw.BusinessAuth(cfg.Auth.JWTSecret))
	handlers.RegisterBillingRoutes(billingGroup, billing)

	// Gateway webhooks authenticate by body signature.
	handlers.RegisterWebhookRoutes(apiV1.Group("/webhooks"), hooks, log)

	// Admin APIs require an operator token.
	adminGroup := apiV1.Group("/admin")
	adminGroup.Use(mw.AdminAuth(cfg.Auth.JWTSecret))
	handlers.RegisterAdminRoutes(adminGroup, invoices, stats, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine, newBillingServices),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
