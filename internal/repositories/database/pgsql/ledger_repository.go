package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/water_billing_ledger/internal/models"
	"github.com/SscSPs/water_billing_ledger/internal/utils/mapping"
	"github.com/SscSPs/water_billing_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ledgerEntryColumns = `entry_id, account_id, reason, amount, balance_after, reference_id, memo,
	created_at, created_by`

// PgxLedgerRepository owns every write to accounts.balance.
type PgxLedgerRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountTransactionSupport
}

func newPgxLedgerRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountTransactionSupport) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// ApplyPosting locks the account row, stores the record attached to the posting, moves the
// balance and appends the ledger entry. Nothing is written unless every step succeeds.
func (r *PgxLedgerRepository) ApplyPosting(ctx context.Context, posting domain.Posting) (*domain.LedgerEntry, error) {
	if err := posting.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// 1. Serialize every balance change of this account behind the row lock
	account, err := r.accountRepo.FindAccountForUpdate(ctx, tx, posting.AccountID)
	if err != nil {
		return nil, err
	}
	if posting.ComputeDelta != nil {
		delta, ok := posting.ComputeDelta(*account)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", apperrors.ErrPostingWithdrawn, posting.Reason, posting.AccountID)
		}
		posting.Delta = delta
		if err := posting.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	// 2. Store the record that explains the change
	switch {
	case posting.Accrual != nil:
		err = insertAccrual(ctx, tx, *posting.Accrual)
	case posting.Penalty != nil:
		err = insertPenalty(ctx, tx, *posting.Penalty)
	case posting.Payment != nil:
		err = insertPayment(ctx, tx, *posting.Payment)
	}
	if err != nil {
		return nil, err
	}
	if posting.BankMatch != nil {
		if err := linkBankTransaction(ctx, tx, *posting.BankMatch, posting.AccountID, posting.Payment.PaymentID); err != nil {
			return nil, err
		}
	}

	// 3. Move the balance
	newBalance := account.Balance.Add(posting.Delta)
	overdueSince := domain.NextOverdueSince(account.Balance, newBalance, account.OverdueSince, posting.At)
	if err := r.accountRepo.UpdateBalanceInTx(ctx, tx, account.AccountID, newBalance, overdueSince, posting.Actor, posting.At); err != nil {
		return nil, err
	}

	// 4. Penalties are also recorded on the debt case
	if posting.CaseNote != nil {
		if err := insertCaseHistory(ctx, tx, *posting.CaseNote); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE debt_cases SET debt_amount = $1, last_updated_at = $2, last_updated_by = $3 WHERE case_id = $4;`,
			newBalance.Abs(), posting.At, posting.Actor, posting.CaseNote.CaseID,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to refresh debt case "+posting.CaseNote.CaseID, err)
		}
	}

	// 5. Append the ledger entry
	entry := domain.LedgerEntry{
		EntryID:      posting.EntryID,
		AccountID:    posting.AccountID,
		Reason:       posting.Reason,
		Amount:       posting.Delta,
		BalanceAfter: newBalance,
		ReferenceID:  posting.ReferenceID,
		Memo:         posting.Memo,
		CreatedAt:    posting.At,
		CreatedBy:    posting.Actor,
	}
	m := mapping.ToModelLedgerEntry(entry)
	_, err = tx.Exec(ctx, `INSERT INTO ledger_entries (`+ledgerEntryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		m.EntryID,
		m.AccountID,
		m.Reason,
		m.Amount,
		m.BalanceAfter,
		m.ReferenceID,
		m.Memo,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert ledger entry for account "+posting.AccountID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &entry, nil
}

func insertAccrual(ctx context.Context, tx pgx.Tx, accrual domain.Accrual) error {
	m := mapping.ToModelAccrual(accrual)
	_, err := tx.Exec(ctx, `INSERT INTO accruals (`+accrualColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		m.AccrualID,
		m.AccountID,
		m.Period,
		m.TariffID,
		m.Consumption,
		m.Water,
		m.Garbage,
		m.Garden,
		m.Subtotal,
		m.Tax,
		m.Total,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("%w: account %s, period %s", apperrors.ErrDuplicateAccrual, m.AccountID, m.Period)
		}
		return apperrors.NewAppError(500, "failed to insert accrual for account "+m.AccountID, err)
	}
	return nil
}

func insertPenalty(ctx context.Context, tx pgx.Tx, penalty domain.Penalty) error {
	m := mapping.ToModelPenalty(penalty)
	_, err := tx.Exec(ctx, `INSERT INTO penalties (penalty_id, account_id, case_id, penalty_date, base_debt,
			days_over, rate_percent, amount, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		m.PenaltyID,
		m.AccountID,
		m.CaseID,
		m.PenaltyDate,
		m.BaseDebt,
		m.DaysOver,
		m.RatePercent,
		m.Amount,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("%w: account %s on %s", apperrors.ErrDuplicatePenalty, m.AccountID, m.PenaltyDate.Format("2006-01-02"))
		}
		return apperrors.NewAppError(500, "failed to insert penalty for account "+m.AccountID, err)
	}
	return nil
}

func insertPayment(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	_, err := tx.Exec(ctx, `INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		m.PaymentID,
		m.AccountID,
		m.Amount,
		m.PaymentDate,
		m.Method,
		m.ControllerID,
		m.Reference,
		m.CheckClosingID,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("%w: payment %s", apperrors.ErrDuplicate, m.PaymentID)
		}
		return apperrors.NewAppError(500, "failed to insert payment for account "+m.AccountID, err)
	}
	return nil
}

// ListEntries returns one page of an account's ledger, newest first.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries
			WHERE account_id = $1 AND (created_at, entry_id) < ($2, $3)
			ORDER BY created_at DESC, entry_id DESC
			LIMIT $4;`
		rows, err = r.Pool.Query(ctx, query, accountID, lastCreatedAt, lastID, fetchLimit)
	} else {
		query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries
			WHERE account_id = $1
			ORDER BY created_at DESC, entry_id DESC
			LIMIT $2;`
		rows, err = r.Pool.Query(ctx, query, accountID, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query ledger entries for account "+accountID, err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, fetchLimit)
	for rows.Next() {
		var m models.LedgerEntry
		if err := rows.Scan(
			&m.EntryID,
			&m.AccountID,
			&m.Reason,
			&m.Amount,
			&m.BalanceAfter,
			&m.ReferenceID,
			&m.Memo,
			&m.CreatedAt,
			&m.CreatedBy,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan ledger entry for account "+accountID, err)
		}
		entries = append(entries, mapping.ToDomainLedgerEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating ledger entries for account "+accountID, err)
	}

	if len(entries) <= limit {
		return entries, nil, nil
	}
	last := entries[limit-1]
	token := pagination.EncodeToken(last.CreatedAt, last.EntryID)
	return entries[:limit], &token, nil
}
