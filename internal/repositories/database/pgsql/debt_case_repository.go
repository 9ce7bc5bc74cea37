package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/water_billing_ledger/internal/models"
	"github.com/SscSPs/water_billing_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const debtCaseColumns = `case_id, account_id, debt_amount, debt_age_days, status, opened_at, closed_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxDebtCaseRepository struct {
	BaseRepository
}

func newPgxDebtCaseRepository(pool *pgxpool.Pool) *PgxDebtCaseRepository {
	return &PgxDebtCaseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DebtCaseRepositoryFacade = (*PgxDebtCaseRepository)(nil)

func scanDebtCase(row pgx.Row) (domain.DebtCase, error) {
	var m models.DebtCase
	err := row.Scan(
		&m.CaseID,
		&m.AccountID,
		&m.DebtAmount,
		&m.DebtAgeDays,
		&m.Status,
		&m.OpenedAt,
		&m.ClosedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.DebtCase{}, err
	}
	return mapping.ToDomainDebtCase(m), nil
}

func insertCaseHistory(ctx context.Context, tx pgx.Tx, entry domain.DebtCaseHistoryEntry) error {
	m := mapping.ToModelDebtCaseHistory(entry)
	_, err := tx.Exec(ctx, `INSERT INTO debt_case_history (entry_id, case_id, at, actor, from_status, to_status, action)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		m.EntryID, m.CaseID, m.At, m.Actor, m.FromStatus, m.ToStatus, m.Action,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to append history to debt case "+m.CaseID, err)
	}
	return nil
}

func (r *PgxDebtCaseRepository) queryCases(ctx context.Context, query string, args ...any) ([]domain.DebtCase, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := make([]domain.DebtCase, 0)
	for rows.Next() {
		c, err := scanDebtCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt case row: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// FindCaseByID returns a case with its history, oldest entry first.
func (r *PgxDebtCaseRepository) FindCaseByID(ctx context.Context, caseID string) (*domain.DebtCase, error) {
	query := `SELECT ` + debtCaseColumns + ` FROM debt_cases WHERE case_id = $1;`
	c, err := scanDebtCase(r.Pool.QueryRow(ctx, query, caseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find debt case %s: %w", caseID, err)
	}

	rows, err := r.Pool.Query(ctx, `SELECT entry_id, case_id, at, actor, from_status, to_status, action
		FROM debt_case_history WHERE case_id = $1 ORDER BY at, entry_id;`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history of debt case %s: %w", caseID, err)
	}
	defer rows.Close()

	c.History = make([]domain.DebtCaseHistoryEntry, 0)
	for rows.Next() {
		var h models.DebtCaseHistory
		if err := rows.Scan(&h.EntryID, &h.CaseID, &h.At, &h.Actor, &h.FromStatus, &h.ToStatus, &h.Action); err != nil {
			return nil, fmt.Errorf("failed to scan debt case history row: %w", err)
		}
		c.History = append(c.History, mapping.ToDomainDebtCaseHistory(h))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history of debt case %s: %w", caseID, err)
	}
	return &c, nil
}

// FindOpenCaseByAccount returns the non-closed case of an account.
func (r *PgxDebtCaseRepository) FindOpenCaseByAccount(ctx context.Context, accountID string) (*domain.DebtCase, error) {
	query := `SELECT ` + debtCaseColumns + ` FROM debt_cases WHERE account_id = $1 AND status <> 'CLOSED';`
	c, err := scanDebtCase(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find open debt case for account %s: %w", accountID, err)
	}
	return &c, nil
}

// ListCases returns cases in status, or all cases when status is empty.
func (r *PgxDebtCaseRepository) ListCases(ctx context.Context, status domain.DebtCaseStatus) ([]domain.DebtCase, error) {
	query := `SELECT ` + debtCaseColumns + ` FROM debt_cases
		WHERE ($1 = '' OR status = $1)
		ORDER BY opened_at DESC;`
	cases, err := r.queryCases(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list debt cases: %w", err)
	}
	return cases, nil
}

// ListOpenCases returns every non-closed case.
func (r *PgxDebtCaseRepository) ListOpenCases(ctx context.Context) ([]domain.DebtCase, error) {
	query := `SELECT ` + debtCaseColumns + ` FROM debt_cases WHERE status <> 'CLOSED' ORDER BY opened_at;`
	cases, err := r.queryCases(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open debt cases: %w", err)
	}
	return cases, nil
}

// ListPenalties returns the penalties charged under a case, newest first.
func (r *PgxDebtCaseRepository) ListPenalties(ctx context.Context, caseID string) ([]domain.Penalty, error) {
	rows, err := r.Pool.Query(ctx, `SELECT penalty_id, account_id, case_id, penalty_date, base_debt, days_over,
			rate_percent, amount, created_at, created_by
		FROM penalties WHERE case_id = $1 ORDER BY penalty_date DESC;`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list penalties of case %s: %w", caseID, err)
	}
	defer rows.Close()

	penalties := make([]domain.Penalty, 0)
	for rows.Next() {
		var m models.Penalty
		if err := rows.Scan(&m.PenaltyID, &m.AccountID, &m.CaseID, &m.PenaltyDate, &m.BaseDebt, &m.DaysOver,
			&m.RatePercent, &m.Amount, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan penalty row: %w", err)
		}
		penalties = append(penalties, mapping.ToDomainPenalty(m))
	}
	return penalties, rows.Err()
}

// SaveCase inserts a case together with its opening history entry.
func (r *PgxDebtCaseRepository) SaveCase(ctx context.Context, debtCase domain.DebtCase, opening domain.DebtCaseHistoryEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelDebtCase(debtCase)
	_, err = tx.Exec(ctx, `INSERT INTO debt_cases (`+debtCaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		m.CaseID,
		m.AccountID,
		m.DebtAmount,
		m.DebtAgeDays,
		m.Status,
		m.OpenedAt,
		m.ClosedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("%w: account %s already has an open debt case", apperrors.ErrDuplicate, m.AccountID)
		}
		return apperrors.NewAppError(500, "failed to insert debt case for account "+m.AccountID, err)
	}
	if err := insertCaseHistory(ctx, tx, opening); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// TransitionCase applies a status change only if the stored status still equals entry.FromStatus.
func (r *PgxDebtCaseRepository) TransitionCase(ctx context.Context, caseID string, entry domain.DebtCaseHistoryEntry, closedAt *time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	cmdTag, err := tx.Exec(ctx, `
		UPDATE debt_cases
		SET status = $1, closed_at = $2, last_updated_at = $3, last_updated_by = $4
		WHERE case_id = $5 AND status = $6;`,
		string(entry.ToStatus), closedAt, entry.At, entry.Actor, caseID, string(entry.FromStatus),
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of debt case "+caseID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: debt case %s is no longer %s", apperrors.ErrConflict, caseID, entry.FromStatus)
	}
	if err := insertCaseHistory(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// AddHistory appends an entry without changing the status.
func (r *PgxDebtCaseRepository) AddHistory(ctx context.Context, entry domain.DebtCaseHistoryEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertCaseHistory(ctx, tx, entry); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE debt_cases SET last_updated_at = $1, last_updated_by = $2 WHERE case_id = $3;`,
		entry.At, entry.Actor, entry.CaseID); err != nil {
		return apperrors.NewAppError(500, "failed to touch debt case "+entry.CaseID, err)
	}
	return r.Commit(ctx, tx)
}

// UpdateSnapshot refreshes the debt amount and age of an open case.
func (r *PgxDebtCaseRepository) UpdateSnapshot(ctx context.Context, caseID string, debtAmount decimal.Decimal, debtAgeDays int, actor string, now time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE debt_cases
		SET debt_amount = $1, debt_age_days = $2, last_updated_at = $3, last_updated_by = $4
		WHERE case_id = $5 AND status <> 'CLOSED';`,
		debtAmount, debtAgeDays, now, actor, caseID,
	)
	if err != nil {
		return fmt.Errorf("failed to update snapshot of debt case %s: %w", caseID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
