// Package jobs runs the periodic maintenance tasks.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Skotchmaster/paperman/internal/notify"
	"github.com/Skotchmaster/paperman/internal/service"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

const jobTimeout = 5 * time.Minute

type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

func New(loc *time.Location, l *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		log:  l.With("component", "jobs"),
	}
}

// Add registers fn under spec. An empty spec disables the job.
func (s *Scheduler) Add(spec, name string, fn func(ctx context.Context) error) error {
	if spec == "" {
		s.log.Info("job_disabled", "job", name)
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.wrap(name, fn)); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.Info("job_scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) wrap(name string, fn func(ctx context.Context) error) func() {
	return func() {
		l := s.log.With("job", name)
		defer func() {
			if r := recover(); r != nil {
				l.Error("job_panic", "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			l.Error("job_failed", "duration_ms", time.Since(start).Milliseconds(), "error", err)
			return
		}
		l.Info("job_done", "duration_ms", time.Since(start).Milliseconds())
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

type LowStockSource interface {
	LowStock(ctx context.Context) ([]service.StockItem, error)
}

type Mailer interface {
	Notify(subject, body string) error
}

// LowStockDigest mails the products below threshold. Nothing is sent when
// every product is in stock.
func LowStockDigest(src LowStockSource, mailer Mailer, threshold int) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		items, err := src.LowStock(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		lines := make([]notify.LowStockLine, len(items))
		for i, it := range items {
			lines[i] = notify.LowStockLine{Name: it.Name, Category: it.Category, Quantity: it.Quantity, Status: it.Status}
		}
		return mailer.Notify(notify.LowStockMail(lines, threshold))
	}
}

type TokenPurger interface {
	PurgeTokens(ctx context.Context) (int64, error)
}

func PurgeTokens(p TokenPurger, l *slog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		n, err := p.PurgeTokens(ctx)
		if err != nil {
			return err
		}
		l.Info("refresh_tokens_purged", "count", n)
		return nil
	}
}
