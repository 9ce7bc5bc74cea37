// Package scheduler runs the periodic billing jobs inside the server process.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
	"github.com/robfig/cron/v3"
)

// JobScheduler runs the billing jobs on a cron schedule: the accrual run for the previous month
// on the accrual day, and the debt sweep once per calendar day. A catch-up entry re-checks both
// every interval so a failed run is retried.
type JobScheduler struct {
	accruals   portssvc.AccrualGeneratorSvc
	sweep      portssvc.DebtSweepSvc
	clock      clock.Clock
	interval   time.Duration
	accrualDay int
	logger     *slog.Logger

	cron         *cron.Cron
	accrualEntry cron.EntryID
	sweepEntry   cron.EntryID
	catchUpEntry cron.EntryID
	runCtx       context.Context

	mu                sync.Mutex
	lastAccrualPeriod string
	lastSweepDay      time.Time
}

// NewJobScheduler creates a scheduler whose cron entries fire in loc. accrualDay is the day of
// month on which the previous month is billed.
func NewJobScheduler(accruals portssvc.AccrualGeneratorSvc, sweep portssvc.DebtSweepSvc, clk clock.Clock, loc *time.Location, interval time.Duration, accrualDay int, logger *slog.Logger) (*JobScheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	if interval < time.Second {
		return nil, fmt.Errorf("scheduler interval must be at least 1s, got %s", interval)
	}
	s := &JobScheduler{
		accruals:   accruals,
		sweep:      sweep,
		clock:      clk,
		interval:   interval,
		accrualDay: accrualDay,
		logger:     logger.With(slog.String("component", "scheduler")),
		runCtx:     context.Background(),
		cron:       cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger))),
	}

	var err error
	if s.accrualEntry, err = s.cron.AddFunc(fmt.Sprintf("0 1 %d * *", accrualDay), s.jobFunc(s.accrualsDue)); err != nil {
		return nil, fmt.Errorf("failed to schedule accruals: %w", err)
	}
	if s.sweepEntry, err = s.cron.AddFunc("@daily", s.jobFunc(s.sweepDue)); err != nil {
		return nil, fmt.Errorf("failed to schedule debt sweep: %w", err)
	}
	if s.catchUpEntry, err = s.cron.AddFunc("@every "+interval.String(), s.jobFunc(s.Tick)); err != nil {
		return nil, fmt.Errorf("failed to schedule catch-up: %w", err)
	}
	return s, nil
}

// Run starts the cron entries, checks for due jobs immediately and blocks until ctx is
// cancelled. Running jobs are allowed to finish before Run returns.
func (s *JobScheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler running", slog.Duration("interval", s.interval), slog.Int("accrual_day", s.accrualDay))
	s.runCtx = ctx
	s.cron.Start()

	s.Tick(ctx)
	<-ctx.Done()

	s.logger.Info("Scheduler shutting down")
	<-s.cron.Stop().Done()
}

func (s *JobScheduler) jobFunc(job func(context.Context)) func() {
	return func() {
		job(s.runCtx)
	}
}

// Tick runs whatever is due at the current clock time.
func (s *JobScheduler) Tick(ctx context.Context) {
	s.accrualsDue(ctx)
	s.sweepDue(ctx)
}

func (s *JobScheduler) accrualsDue(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if now.Day() < s.accrualDay {
		return
	}
	period := domain.PeriodOf(now).Previous()
	if period.String() != s.lastAccrualPeriod {
		s.runAccruals(s.jobContext(ctx), period)
	}
}

func (s *JobScheduler) sweepDue(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := domain.DateOnly(s.clock.Now())
	if !today.Equal(s.lastSweepDay) {
		s.runSweep(s.jobContext(ctx), today)
	}
}

func (s *JobScheduler) jobContext(ctx context.Context) context.Context {
	ctx = middleware.WithUserID(ctx, domain.SystemActor)
	return middleware.WithLogger(ctx, s.logger)
}

func (s *JobScheduler) runAccruals(ctx context.Context, period domain.BillingPeriod) {
	logger := s.logger.With(slog.String("job", "accruals"), slog.String("period", period.String()))
	result, err := s.accruals.RunMonthlyAccruals(ctx, period, domain.SystemActor)
	switch {
	case err == nil:
		logger.Info("Accrual run finished",
			slog.Int("created", len(result.Accruals)),
			slog.Int("skipped", len(result.Skipped)),
			slog.Int("failed", len(result.Failures)))
	case errors.Is(err, apperrors.ErrConflict):
		logger.Info("Accrual run already in progress elsewhere")
	default:
		// Retried on the next tick.
		logger.Error("Accrual run failed", slog.String("error", err.Error()))
		return
	}
	s.lastAccrualPeriod = period.String()
}

func (s *JobScheduler) runSweep(ctx context.Context, day time.Time) {
	logger := s.logger.With(slog.String("job", "debt_sweep"), slog.String("day", day.Format(time.DateOnly)))
	result, err := s.sweep.RunDailySweep(ctx, day, domain.SystemActor)
	switch {
	case err == nil:
		logger.Info("Debt sweep finished",
			slog.Int("opened", len(result.CasesOpened)),
			slog.Int("penalties", len(result.Penalties)),
			slog.Int("failed", len(result.Failures)))
	case errors.Is(err, apperrors.ErrConflict):
		logger.Info("Debt sweep already in progress elsewhere")
	default:
		logger.Error("Debt sweep failed", slog.String("error", err.Error()))
		return
	}
	s.lastSweepDay = day
}
