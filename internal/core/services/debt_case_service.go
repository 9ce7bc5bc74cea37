package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/utils/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtCaseServiceConfig holds the debt policy and the sweep lock lifetime.
type DebtCaseServiceConfig struct {
	Policy  domain.DebtPolicy
	LockTTL time.Duration
}

type debtCaseService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	caseRepo    portsrepo.DebtCaseRepositoryFacade
	tariffRepo  portsrepo.TariffReader
	ledger      portssvc.LedgerWriterSvc
	locker      ports.Locker
	cfg         DebtCaseServiceConfig
}

// NewDebtCaseService creates a new debt case service.
func NewDebtCaseService(
	accountRepo portsrepo.AccountReader,
	caseRepo portsrepo.DebtCaseRepositoryFacade,
	tariffRepo portsrepo.TariffReader,
	ledger portssvc.LedgerWriterSvc,
	locker ports.Locker,
	cfg DebtCaseServiceConfig,
	options ...ServiceOption,
) portssvc.DebtCaseSvcFacade {
	return &debtCaseService{
		BaseService: newBaseService(options),
		accountRepo: accountRepo,
		caseRepo:    caseRepo,
		tariffRepo:  tariffRepo,
		ledger:      ledger,
		locker:      locker,
		cfg:         cfg,
	}
}

var _ portssvc.DebtCaseSvcFacade = (*debtCaseService)(nil)

func (s *debtCaseService) RunDailySweep(ctx context.Context, day time.Time, actor string) (*domain.SweepResult, error) {
	day = domain.DateOnly(day)
	dayKey := day.Format(time.DateOnly)

	var result *domain.SweepResult
	err := s.withLock(ctx, s.locker, "job:debt-sweep:"+dayKey, s.cfg.LockTTL, func() error {
		var err error
		result, err = s.sweep(ctx, day, actor)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Daily debt sweep failed", slog.String("day", dayKey))
		return nil, err
	}

	s.LogInfo(ctx, "Daily debt sweep finished",
		slog.String("day", dayKey),
		slog.Int("opened", len(result.CasesOpened)),
		slog.Int("escalated", len(result.CasesEscalated)),
		slog.Int("closed", len(result.CasesClosed)),
		slog.Int("penalties", len(result.Penalties)),
		slog.Int("failed", len(result.Failures)))
	s.Publish(ctx, domain.EventDebtSweepCompleted, actor, dayKey, map[string]any{
		"opened":    len(result.CasesOpened),
		"escalated": len(result.CasesEscalated),
		"closed":    len(result.CasesClosed),
		"penalties": len(result.Penalties),
		"failed":    len(result.Failures),
	})
	return result, nil
}

func (s *debtCaseService) sweep(ctx context.Context, day time.Time, actor string) (*domain.SweepResult, error) {
	tariff, err := s.tariffRepo.FindActiveTariff(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrMissingTariff
		}
		return nil, err
	}
	openCases, err := s.caseRepo.ListOpenCases(ctx)
	if err != nil {
		return nil, err
	}
	debtors, err := s.accountRepo.ListAccountsInDebt(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(debtors, func(i, j int) bool { return debtors[i].AccountID < debtors[j].AccountID })

	policy := s.cfg.Policy
	now := s.Now()
	result := &domain.SweepResult{
		Day:              day.Format(time.DateOnly),
		CasesOpened:      []string{},
		CasesEscalated:   []string{},
		CasesClosed:      []string{},
		Penalties:        []domain.Penalty{},
		PenaltiesSkipped: []string{},
		Failures:         []domain.AccountFailure{},
	}
	fail := func(accountID string, err error) {
		result.Failures = append(result.Failures, domain.AccountFailure{AccountID: accountID, Reason: err.Error(), Err: err})
	}

	debtorByID := make(map[string]domain.Account, len(debtors))
	for _, acc := range debtors {
		debtorByID[acc.AccountID] = acc
	}
	openByAccount := make(map[string]domain.DebtCase, len(openCases))

	// Close repaid cases, refresh snapshots and escalate.
	for _, c := range openCases {
		account, ok := debtorByID[c.AccountID]
		if !ok {
			loaded, err := s.accountRepo.FindAccountByID(ctx, c.AccountID)
			if err != nil {
				fail(c.AccountID, err)
				continue
			}
			account = *loaded
		}

		if !account.InDebt() {
			if err := s.transition(ctx, c, domain.CaseClosed, actor, "closed automatically: balance repaid", now); err != nil {
				fail(c.AccountID, err)
				continue
			}
			result.CasesClosed = append(result.CasesClosed, c.CaseID)
			continue
		}

		days := account.DaysOverdue(day)
		if err := s.caseRepo.UpdateSnapshot(ctx, c.CaseID, account.Balance.Abs(), days, actor, now); err != nil {
			fail(c.AccountID, err)
			continue
		}
		if c.Status == domain.CaseMonitoring && domain.DateOnly(c.OpenedAt).Before(day) && billing.ShouldEscalate(account.Balance, days, policy) {
			action := fmt.Sprintf("warning sent automatically: debt %s overdue %d days", account.Balance.Abs().StringFixed(2), days)
			if err := s.transition(ctx, c, domain.CaseWarningSent, actor, action, now); err != nil {
				fail(c.AccountID, err)
			} else {
				c.Status = domain.CaseWarningSent
				result.CasesEscalated = append(result.CasesEscalated, c.CaseID)
			}
		}
		openByAccount[c.AccountID] = c
	}

	// Open Monitoring cases for debts past the grace period.
	for _, account := range debtors {
		if _, ok := openByAccount[account.AccountID]; ok {
			continue
		}
		days := account.DaysOverdue(day)
		if days <= policy.GracePeriodDays {
			continue
		}
		c, err := s.openCase(ctx, account, days, actor, now)
		if err != nil {
			fail(account.AccountID, err)
			continue
		}
		openByAccount[account.AccountID] = *c
		result.CasesOpened = append(result.CasesOpened, c.CaseID)
	}

	// Daily penalties.
	for _, account := range debtors {
		c, ok := openByAccount[account.AccountID]
		if !ok {
			continue
		}
		penalty, err := s.chargePenalty(ctx, account, c, tariff.PenaltyRatePercent, day, actor, now)
		switch {
		case err == nil && penalty == nil:
		case err == nil:
			result.Penalties = append(result.Penalties, *penalty)
		case errors.Is(err, apperrors.ErrDuplicatePenalty):
			result.PenaltiesSkipped = append(result.PenaltiesSkipped, account.AccountID)
		default:
			fail(account.AccountID, err)
		}
	}

	return result, nil
}

func (s *debtCaseService) openCase(ctx context.Context, account domain.Account, days int, actor string, now time.Time) (*domain.DebtCase, error) {
	c := domain.DebtCase{
		CaseID:      uuid.NewString(),
		AccountID:   account.AccountID,
		DebtAmount:  account.Balance.Abs(),
		DebtAgeDays: days,
		Status:      domain.CaseMonitoring,
		OpenedAt:    now,
		AuditFields: domain.NewAuditFields(actor, now),
	}
	opening := domain.DebtCaseHistoryEntry{
		EntryID:    uuid.NewString(),
		CaseID:     c.CaseID,
		At:         now,
		Actor:      actor,
		FromStatus: domain.CaseMonitoring,
		ToStatus:   domain.CaseMonitoring,
		Action:     fmt.Sprintf("case opened: debt %s overdue %d days", c.DebtAmount.StringFixed(2), days),
	}
	if err := s.caseRepo.SaveCase(ctx, c, opening); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.caseRepo.FindOpenCaseByAccount(ctx, account.AccountID)
		}
		return nil, err
	}
	return &c, nil
}

// chargePenalty posts the day's penalty. A nil penalty with a nil error means none is due.
// The amount is recomputed from the balance read under the ledger row lock.
func (s *debtCaseService) chargePenalty(ctx context.Context, account domain.Account, c domain.DebtCase, rate decimal.Decimal, day time.Time, actor string, now time.Time) (*domain.Penalty, error) {
	quote := billing.QuotePenalty(account.Balance, rate, account.DaysOverdue(day), s.cfg.Policy)
	if !quote.Applies {
		return nil, nil
	}
	penalty := domain.Penalty{
		PenaltyID:   uuid.NewString(),
		AccountID:   account.AccountID,
		CaseID:      c.CaseID,
		PenaltyDate: day,
		RatePercent: rate,
		CreatedAt:   now,
		CreatedBy:   actor,
	}
	note := domain.DebtCaseHistoryEntry{
		EntryID:    uuid.NewString(),
		CaseID:     c.CaseID,
		At:         now,
		Actor:      actor,
		FromStatus: c.Status,
		ToStatus:   c.Status,
	}
	price := func(q billing.PenaltyQuote) decimal.Decimal {
		penalty.BaseDebt = q.BaseDebt
		penalty.DaysOver = q.DaysOver
		penalty.Amount = q.Amount
		note.Action = fmt.Sprintf("penalty %s charged on debt %s, %d days over grace",
			q.Amount.StringFixed(2), q.BaseDebt.StringFixed(2), q.DaysOver)
		return q.Amount.Neg()
	}

	reprice := func(locked domain.Account) (decimal.Decimal, bool) {
		q := billing.QuotePenalty(locked.Balance, rate, locked.DaysOverdue(day), s.cfg.Policy)
		if !q.Applies {
			return decimal.Zero, false
		}
		return price(q), true
	}

	_, err := s.ledger.ApplyDelta(ctx, domain.Posting{
		AccountID:    account.AccountID,
		Delta:        price(quote),
		Reason:       domain.ReasonPenalty,
		ReferenceID:  penalty.PenaltyID,
		Memo:         "penalty " + day.Format(time.DateOnly),
		Actor:        actor,
		At:           now,
		Penalty:      &penalty,
		CaseNote:     &note,
		ComputeDelta: reprice,
	})
	if errors.Is(err, apperrors.ErrPostingWithdrawn) {
		s.LogInfo(ctx, "Penalty withdrawn, debt changed since the sweep started",
			slog.String("account_id", account.AccountID),
			slog.String("case_id", c.CaseID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &penalty, nil
}

func (s *debtCaseService) transition(ctx context.Context, c domain.DebtCase, target domain.DebtCaseStatus, actor string, action string, now time.Time) error {
	if !c.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, c.Status, target)
	}
	entry := domain.DebtCaseHistoryEntry{
		EntryID:    uuid.NewString(),
		CaseID:     c.CaseID,
		At:         now,
		Actor:      actor,
		FromStatus: c.Status,
		ToStatus:   target,
		Action:     action,
	}
	var closedAt *time.Time
	if target == domain.CaseClosed {
		closedAt = &now
	}
	if err := s.caseRepo.TransitionCase(ctx, c.CaseID, entry, closedAt); err != nil {
		return err
	}
	s.Publish(ctx, domain.EventDebtCaseTransitioned, actor, c.CaseID, map[string]any{
		"accountID": c.AccountID,
		"from":      string(c.Status),
		"to":        string(target),
		"action":    action,
	})
	return nil
}

func (s *debtCaseService) Transition(ctx context.Context, caseID string, target domain.DebtCaseStatus, actor string, action string) (*domain.DebtCase, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, fmt.Errorf("%w: a transition needs an actor", apperrors.ErrValidation)
	}
	c, err := s.caseRepo.FindCaseByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	action = strings.TrimSpace(action)
	if action == "" {
		action = "status changed to " + string(target)
	}
	if err := s.transition(ctx, *c, target, actor, action, s.Now()); err != nil {
		s.LogWarn(ctx, "Debt case transition rejected",
			slog.String("case_id", caseID),
			slog.String("from", string(c.Status)),
			slog.String("to", string(target)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.LogInfo(ctx, "Debt case transitioned",
		slog.String("case_id", caseID),
		slog.String("from", string(c.Status)),
		slog.String("to", string(target)),
		slog.String("actor", actor))
	return s.caseRepo.FindCaseByID(ctx, caseID)
}

func (s *debtCaseService) AddNote(ctx context.Context, caseID string, actor string, action string) (*domain.DebtCase, error) {
	actor = strings.TrimSpace(actor)
	action = strings.TrimSpace(action)
	if actor == "" || action == "" {
		return nil, fmt.Errorf("%w: a note needs an actor and a text", apperrors.ErrValidation)
	}
	c, err := s.caseRepo.FindCaseByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: debt case %s is closed", apperrors.ErrValidation, caseID)
	}
	entry := domain.DebtCaseHistoryEntry{
		EntryID:    uuid.NewString(),
		CaseID:     caseID,
		At:         s.Now(),
		Actor:      actor,
		FromStatus: c.Status,
		ToStatus:   c.Status,
		Action:     action,
	}
	if err := s.caseRepo.AddHistory(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to add debt case note", slog.String("case_id", caseID))
		return nil, err
	}
	return s.caseRepo.FindCaseByID(ctx, caseID)
}

func (s *debtCaseService) GetCase(ctx context.Context, caseID string) (*domain.DebtCase, error) {
	return s.caseRepo.FindCaseByID(ctx, caseID)
}

func (s *debtCaseService) ListCases(ctx context.Context, status domain.DebtCaseStatus) ([]domain.DebtCase, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown debt case status %q", apperrors.ErrValidation, status)
	}
	return s.caseRepo.ListCases(ctx, status)
}

func (s *debtCaseService) ListPenalties(ctx context.Context, caseID string) ([]domain.Penalty, error) {
	if _, err := s.caseRepo.FindCaseByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.caseRepo.ListPenalties(ctx, caseID)
}
