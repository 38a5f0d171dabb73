package db

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/cardbilling/internal/models"
	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	gormzap "github.com/fatflowers/cardbilling/pkg/gormlog"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	d, err := dialector(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	logger := gormzap.New(l, gormzap.Options{
		SlowThreshold: cfg.Database.SlowThreshold,
		Level:         cfg.Database.LogLevel,
	})
	db, err := gorm.Open(d, &gorm.Config{Logger: logger})
	if err != nil {
		l.Errorw("db_connect_failed", "driver", d.Name(), "err", err)
		return nil, err
	}
	if d.Name() == DriverSQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	l.Infow("db_connected", "driver", d.Name())
	return db, nil
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// Migrate creates the schema and seeds the invoice number counter.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Subscription{},
		&models.SubscriptionPayment{},
		&models.SubscriptionLog{},
		&models.Invoice{},
		&models.InvoiceDocument{},
		&models.InvoiceSequence{},
		&models.PaymentVerification{},
		&models.PaymentAttemptLog{},
	); err != nil {
		return err
	}
	seed := &models.InvoiceSequence{Name: models.InvoiceSequenceName, Value: 0}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error
}

// AutoMigrate runs GORM migrations on startup
func AutoMigrate(l *zap.SugaredLogger, db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		l.Errorw("automigrate_failed", "err", err)
		return err
	}
	l.Infow("automigrate_completed")
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing database connection pool")
			return sqlDB.Close()
		},
	})
}
