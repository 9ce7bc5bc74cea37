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

const checkClosingColumns = `closing_id, closing_date, controller_id, payment_ids, total_amount, status,
	notes, cancel_reason, closed_by, created_at, created_by, last_updated_at, last_updated_by`

type PgxCheckClosingRepository struct {
	BaseRepository
}

func newPgxCheckClosingRepository(pool *pgxpool.Pool) *PgxCheckClosingRepository {
	return &PgxCheckClosingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CheckClosingRepositoryFacade = (*PgxCheckClosingRepository)(nil)

func scanCheckClosing(row pgx.Row) (domain.CheckClosing, error) {
	var m models.CheckClosing
	err := row.Scan(
		&m.ClosingID,
		&m.ClosingDate,
		&m.ControllerID,
		&m.PaymentIDs,
		&m.TotalAmount,
		&m.Status,
		&m.Notes,
		&m.CancelReason,
		&m.ClosedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.CheckClosing{}, err
	}
	return mapping.ToDomainCheckClosing(m), nil
}

// CreateClosing inserts the closing first so the partial unique index guards the
// (controller, date) pair, then claims the unclaimed payments of that day.
func (r *PgxCheckClosingRepository) CreateClosing(ctx context.Context, closing domain.CheckClosing) (*domain.CheckClosing, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	closing.PaymentIDs = []string{}
	closing.TotalAmount = decimal.Zero
	m := mapping.ToModelCheckClosing(closing)
	_, err = tx.Exec(ctx, `INSERT INTO check_closings (`+checkClosingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		m.ClosingID,
		m.ClosingDate,
		m.ControllerID,
		m.PaymentIDs,
		m.TotalAmount,
		m.Status,
		m.Notes,
		m.CancelReason,
		m.ClosedBy,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return nil, fmt.Errorf("%w: controller %s on %s", apperrors.ErrDuplicateClosing, m.ControllerID, m.ClosingDate.Format(time.DateOnly))
		}
		return nil, apperrors.NewAppError(500, "failed to insert check closing", err)
	}

	rows, err := tx.Query(ctx, `
		UPDATE payments
		SET check_closing_id = $1
		WHERE controller_id = $2 AND payment_date = $3 AND check_closing_id IS NULL
		RETURNING payment_id, amount;`,
		m.ClosingID, m.ControllerID, m.ClosingDate,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to claim payments for check closing", err)
	}
	total := decimal.Zero
	paymentIDs := make([]string, 0)
	for rows.Next() {
		var id string
		var amount decimal.Decimal
		if err := rows.Scan(&id, &amount); err != nil {
			rows.Close()
			return nil, apperrors.NewAppError(500, "failed to scan claimed payment", err)
		}
		paymentIDs = append(paymentIDs, id)
		total = total.Add(amount)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating claimed payments", err)
	}
	if len(paymentIDs) == 0 {
		return nil, fmt.Errorf("%w: controller %s has no unclosed payments on %s", apperrors.ErrValidation, m.ControllerID, m.ClosingDate.Format(time.DateOnly))
	}

	if _, err := tx.Exec(ctx, `UPDATE check_closings SET payment_ids = $1, total_amount = $2 WHERE closing_id = $3;`,
		paymentIDs, total, m.ClosingID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to record claimed payments", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	closing.PaymentIDs = paymentIDs
	closing.TotalAmount = total
	return &closing, nil
}

// notPendingError tells a missing closing apart from one that already left PENDING.
func (r *PgxCheckClosingRepository) notPendingError(ctx context.Context, closingID string) error {
	existing, err := r.FindClosingByID(ctx, closingID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: check closing %s is %s", apperrors.ErrConflict, closingID, existing.Status)
}

// ConfirmClosing moves a PENDING closing to CONFIRMED.
func (r *PgxCheckClosingRepository) ConfirmClosing(ctx context.Context, closingID string, actor string, now time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE check_closings
		SET status = 'CONFIRMED', closed_by = $1, last_updated_at = $2, last_updated_by = $1
		WHERE closing_id = $3 AND status = 'PENDING';`,
		actor, now, closingID,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm check closing %s: %w", closingID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.notPendingError(ctx, closingID)
	}
	return nil
}

// CancelClosing moves a PENDING closing to CANCELLED and releases its payments in one transaction.
func (r *PgxCheckClosingRepository) CancelClosing(ctx context.Context, closingID string, reason string, actor string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	cmdTag, err := tx.Exec(ctx, `
		UPDATE check_closings
		SET status = 'CANCELLED', cancel_reason = $1, closed_by = $2, last_updated_at = $3, last_updated_by = $2
		WHERE closing_id = $4 AND status = 'PENDING';`,
		reason, actor, now, closingID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to cancel check closing "+closingID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.notPendingError(ctx, closingID)
	}

	if _, err := tx.Exec(ctx, `UPDATE payments SET check_closing_id = NULL WHERE check_closing_id = $1;`, closingID); err != nil {
		return apperrors.NewAppError(500, "failed to release payments of check closing "+closingID, err)
	}

	return r.Commit(ctx, tx)
}

// FindClosingByID returns one closing.
func (r *PgxCheckClosingRepository) FindClosingByID(ctx context.Context, closingID string) (*domain.CheckClosing, error) {
	query := `SELECT ` + checkClosingColumns + ` FROM check_closings WHERE closing_id = $1;`
	c, err := scanCheckClosing(r.Pool.QueryRow(ctx, query, closingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find check closing %s: %w", closingID, err)
	}
	return &c, nil
}

// ListClosings returns closings dated in [from, to], newest first.
func (r *PgxCheckClosingRepository) ListClosings(ctx context.Context, controllerID string, from, to time.Time) ([]domain.CheckClosing, error) {
	query := `SELECT ` + checkClosingColumns + ` FROM check_closings
		WHERE ($1 = '' OR controller_id = $1) AND closing_date >= $2 AND closing_date <= $3
		ORDER BY closing_date DESC, created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, controllerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list check closings: %w", err)
	}
	defer rows.Close()

	closings := make([]domain.CheckClosing, 0)
	for rows.Next() {
		c, err := scanCheckClosing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check closing row: %w", err)
		}
		closings = append(closings, c)
	}
	return closings, rows.Err()
}
