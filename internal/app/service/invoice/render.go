package invoice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm/clause"

	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/internal/platform/pdf"
	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/metrics"
)

type renderOptions struct {
	workers     int
	queueSize   int
	maxAttempts int
	backoff     time.Duration
}

func newRenderOptions(c cfgpkg.InvoiceConfig) renderOptions {
	o := renderOptions{
		workers:     c.RenderWorkers,
		queueSize:   c.RenderQueueSize,
		maxAttempts: c.RenderMaxAttempts,
		backoff:     c.RenderBackoff,
	}
	if o.workers <= 0 {
		o.workers = 2
	}
	if o.queueSize <= 0 {
		o.queueSize = 256
	}
	if o.maxAttempts <= 0 {
		o.maxAttempts = 5
	}
	if o.backoff <= 0 {
		o.backoff = 2 * time.Second
	}
	return o
}

// Enqueue schedules an invoice for rendering. The queue only carries ids: a
// dropped entry is picked up again on the next download.
func (s *Service) Enqueue(ctx context.Context, invoiceID string) {
	select {
	case <-s.stopped:
		return
	default:
	}
	select {
	case s.queue <- invoiceID:
	default:
		logctx.FromCtx(ctx, s.log).Warnw("invoice_render_queue_full", "invoice_id", invoiceID)
	}
}

// Start launches the render workers. They run until ctx is cancelled or Stop
// is called.
func (s *Service) Start(ctx context.Context) *sync.WaitGroup {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		<-s.stopped
		cancel()
	}()
	var wg sync.WaitGroup
	for i := 0; i < s.opts.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-s.queue:
					if err := s.RenderWithRetry(ctx, id); err != nil {
						s.log.Errorw("invoice_render_failed", "invoice_id", id, "err", err)
					}
				}
			}
		}()
	}
	return &wg
}

// Stop signals the workers to exit. Safe to call once.
func (s *Service) Stop() {
	close(s.stopped)
}

// RenderWithRetry renders an invoice, retrying with linear backoff up to the
// configured attempt budget.
func (s *Service) RenderWithRetry(ctx context.Context, invoiceID string) error {
	var err error
	for attempt := 1; attempt <= s.opts.maxAttempts; attempt++ {
		if err = s.Render(ctx, invoiceID); err == nil {
			return nil
		}
		if attempt == s.opts.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.opts.backoff):
		}
	}
	return err
}

// Render produces and stores the document of one invoice. Already rendered
// invoices are skipped. Failures are recorded on the document row.
func (s *Service) Render(ctx context.Context, invoiceID string) error {
	inv, err := s.Get(ctx, invoiceID)
	if err != nil {
		return err
	}
	doc, err := s.document(ctx, invoiceID)
	if err != nil {
		return err
	}
	if doc.Ready() {
		return nil
	}
	if doc == nil {
		doc = &models.InvoiceDocument{InvoiceID: invoiceID}
	}
	doc.RenderAttempts++

	content, renderErr := s.renderer.Render(inv)
	if renderErr != nil {
		msg := renderErr.Error()
		doc.LastError = &msg
		metrics.Inc(metrics.InvoiceRender, "error")
	} else {
		now := s.now()
		doc.Content = content
		doc.ContentType = pdf.ContentType
		doc.LastError = nil
		doc.RenderedAt = &now
		metrics.Inc(metrics.InvoiceRender, "ok")
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "invoice_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "content_type", "render_attempts", "last_error", "rendered_at", "updated_at"}),
	}).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to save invoice document: %w", err)
	}
	if renderErr != nil {
		return fmt.Errorf("render invoice %s: %w", invoiceID, renderErr)
	}
	logctx.FromCtx(ctx, s.log).Infow("invoice_rendered", "invoice_id", invoiceID, "attempts", doc.RenderAttempts, "bytes", len(content))
	return nil
}
