package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fatflowers/cardbilling/pkg/config"
)

// New builds a JSON production logger, or a console logger at debug level
// when running in the dev environment.
func New(cfg *config.Config) (*zap.SugaredLogger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg != nil && cfg.Env == config.EnvDev {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.TimeKey = "time"
	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func sync(lc fx.Lifecycle, log *zap.SugaredLogger) {
	lc.Append(fx.StopHook(func() {
		_ = log.Sync()
	}))
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(sync),
)
