package invoice

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/fatflowers/cardbilling/internal/platform/pdf"
)

func registerWorkers(lc fx.Lifecycle, s *Service) {
	var wg *sync.WaitGroup
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg = s.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(
		NewService,
		func(r *pdf.Renderer) Renderer { return r },
	),
	fx.Invoke(registerWorkers),
)
