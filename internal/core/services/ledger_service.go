package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultEntriesPageSize = 20
	maxEntriesPageSize     = 100
)

// ledgerService is the only service that moves balances.
type ledgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountReader, options ...ServiceOption) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService: newBaseService(options),
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) ApplyDelta(ctx context.Context, posting domain.Posting) (*domain.LedgerEntry, error) {
	if posting.EntryID == "" {
		posting.EntryID = uuid.NewString()
	}
	if posting.At.IsZero() {
		posting.At = s.Now()
	}
	if err := posting.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	entry, err := s.ledgerRepo.ApplyPosting(ctx, posting)
	if err != nil {
		s.LogDebug(ctx, "Ledger posting rejected",
			slog.String("account_id", posting.AccountID),
			slog.String("reason", string(posting.Reason)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.LogDebug(ctx, "Ledger posting applied",
		slog.String("entry_id", entry.EntryID),
		slog.String("account_id", entry.AccountID),
		slog.String("reason", string(entry.Reason)),
		slog.String("amount", entry.Amount.String()),
		slog.String("balance_after", entry.BalanceAfter.String()))
	return entry, nil
}

func (s *ledgerService) Adjust(ctx context.Context, accountID string, amount decimal.Decimal, memo string, actor string) (*domain.LedgerEntry, error) {
	memo = strings.TrimSpace(memo)
	if memo == "" {
		return nil, fmt.Errorf("%w: an adjustment needs a memo", apperrors.ErrValidation)
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: adjustment amount must not be zero", apperrors.ErrValidation)
	}
	if amount.Exponent() < -2 {
		return nil, fmt.Errorf("%w: adjustment amount %s has more than 2 decimal places", apperrors.ErrValidation, amount.String())
	}

	entry, err := s.ApplyDelta(ctx, domain.Posting{
		AccountID: accountID,
		Delta:     amount,
		Reason:    domain.ReasonAdjustment,
		Memo:      memo,
		Actor:     actor,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to apply manual adjustment", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Manual adjustment applied",
		slog.String("account_id", accountID),
		slog.String("amount", amount.String()),
		slog.String("actor", actor))
	return entry, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = defaultEntriesPageSize
	}
	if limit > maxEntriesPageSize {
		limit = maxEntriesPageSize
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, nil, err
	}
	return s.ledgerRepo.ListEntries(ctx, accountID, limit, nextToken)
}
