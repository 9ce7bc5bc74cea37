package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/utils/billing"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AccrualServiceConfig tunes the accrual batch.
type AccrualServiceConfig struct {
	Workers int
	LockTTL time.Duration
}

type accrualService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	tariffRepo  portsrepo.TariffReader
	readingRepo portsrepo.MeterReadingRepositoryFacade
	accrualRepo portsrepo.AccrualRepositoryFacade
	ledger      portssvc.LedgerWriterSvc
	locker      ports.Locker
	cfg         AccrualServiceConfig
}

// NewAccrualService creates a new accrual service.
func NewAccrualService(
	accountRepo portsrepo.AccountReader,
	tariffRepo portsrepo.TariffReader,
	readingRepo portsrepo.MeterReadingRepositoryFacade,
	accrualRepo portsrepo.AccrualRepositoryFacade,
	ledger portssvc.LedgerWriterSvc,
	locker ports.Locker,
	cfg AccrualServiceConfig,
	options ...ServiceOption,
) portssvc.AccrualSvcFacade {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &accrualService{
		BaseService: newBaseService(options),
		accountRepo: accountRepo,
		tariffRepo:  tariffRepo,
		readingRepo: readingRepo,
		accrualRepo: accrualRepo,
		ledger:      ledger,
		locker:      locker,
		cfg:         cfg,
	}
}

var _ portssvc.AccrualSvcFacade = (*accrualService)(nil)

func (s *accrualService) RunMonthlyAccruals(ctx context.Context, period domain.BillingPeriod, actor string) (*domain.AccrualRunResult, error) {
	var result *domain.AccrualRunResult
	err := s.withLock(ctx, s.locker, "job:accruals:"+period.String(), s.cfg.LockTTL, func() error {
		tariff, err := s.tariffRepo.FindActiveTariff(ctx)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ErrMissingTariff
			}
			return err
		}
		accounts, err := s.accountRepo.ListActiveAccounts(ctx)
		if err != nil {
			return err
		}
		result, err = s.GenerateMonthlyAccruals(ctx, period, accounts, *tariff, actor)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Monthly accrual run failed", slog.String("period", period.String()))
		return nil, err
	}

	s.Publish(ctx, domain.EventAccrualRunCompleted, actor, period.String(), map[string]any{
		"created":      len(result.Accruals),
		"skipped":      len(result.Skipped),
		"failed":       len(result.Failures),
		"totalCharged": result.TotalCharged().String(),
	})
	return result, nil
}

func (s *accrualService) GenerateMonthlyAccruals(ctx context.Context, period domain.BillingPeriod, accounts []domain.Account, tariff domain.Tariff, actor string) (*domain.AccrualRunResult, error) {
	billed, err := s.accrualRepo.ListBilledAccountIDs(ctx, period.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load billed accounts for %s: %w", period, err)
	}

	result := &domain.AccrualRunResult{
		Period:   period.String(),
		Accruals: []domain.Accrual{},
		Skipped:  []string{},
		Failures: []domain.AccountFailure{},
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for _, account := range accounts {
		if !account.IsActive() {
			continue
		}
		if billed[account.AccountID] {
			result.Skipped = append(result.Skipped, account.AccountID)
			continue
		}
		g.Go(func() error {
			accrual, err := s.accrueAccount(gctx, period, account, tariff, actor)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Accruals = append(result.Accruals, *accrual)
			case errors.Is(err, apperrors.ErrDuplicateAccrual):
				result.Skipped = append(result.Skipped, account.AccountID)
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				result.Failures = append(result.Failures, domain.AccountFailure{AccountID: account.AccountID, Reason: err.Error(), Err: err})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Accruals, func(i, j int) bool { return result.Accruals[i].AccountID < result.Accruals[j].AccountID })
	sort.Strings(result.Skipped)
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].AccountID < result.Failures[j].AccountID })

	s.LogInfo(ctx, "Monthly accruals generated",
		slog.String("period", result.Period),
		slog.Int("created", len(result.Accruals)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("failed", len(result.Failures)),
		slog.String("total_charged", result.TotalCharged().String()))
	return result, nil
}

// accrueAccount computes one account's charge and posts it as a debit.
func (s *accrualService) accrueAccount(ctx context.Context, period domain.BillingPeriod, account domain.Account, tariff domain.Tariff, actor string) (*domain.Accrual, error) {
	var readings *domain.ReadingPair
	if account.WaterTariffMode == domain.ByMeter {
		pair, err := s.readingsFor(ctx, account.AccountID, period)
		if err != nil {
			return nil, err
		}
		readings = pair
	}

	breakdown, err := billing.CalculateAccrual(account, readings, tariff)
	if err != nil {
		return nil, err
	}
	if !breakdown.Total.IsPositive() {
		return nil, fmt.Errorf("account %s: accrual total is zero: %w", account.AccountID, apperrors.ErrValidation)
	}

	now := s.Now()
	accrual := domain.Accrual{
		AccrualID:        uuid.NewString(),
		AccountID:        account.AccountID,
		Period:           period.String(),
		TariffID:         tariff.TariffID,
		AccrualBreakdown: breakdown,
		CreatedAt:        now,
		CreatedBy:        actor,
	}
	_, err = s.ledger.ApplyDelta(ctx, domain.Posting{
		AccountID:   account.AccountID,
		Delta:       breakdown.Total.Neg(),
		Reason:      domain.ReasonAccrual,
		ReferenceID: accrual.AccrualID,
		Memo:        "accrual " + accrual.Period,
		Actor:       actor,
		At:          now,
		Accrual:     &accrual,
	})
	if err != nil {
		return nil, err
	}
	return &accrual, nil
}

// readingsFor returns the latest reading inside the period and the reading before it.
func (s *accrualService) readingsFor(ctx context.Context, accountID string, period domain.BillingPeriod) (*domain.ReadingPair, error) {
	current, err := s.readingRepo.FindLatestReadingInRange(ctx, accountID, period.Start(), period.End())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("account %s, period %s: %w", accountID, period, apperrors.ErrMissingReading)
		}
		return nil, err
	}
	previous, err := s.readingRepo.FindLatestReadingBefore(ctx, accountID, current.ReadingDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("account %s has no reading before %s: %w", accountID, current.ReadingDate.Format(time.DateOnly), apperrors.ErrMissingReading)
		}
		return nil, err
	}
	return &domain.ReadingPair{Previous: *previous, Current: *current}, nil
}

func (s *accrualService) GetAccrual(ctx context.Context, accrualID string) (*domain.Accrual, error) {
	return s.accrualRepo.FindAccrualByID(ctx, accrualID)
}

func (s *accrualService) ListAccruals(ctx context.Context, filter portsrepo.AccrualFilter) ([]domain.Accrual, error) {
	return s.accrualRepo.ListAccruals(ctx, filter)
}
