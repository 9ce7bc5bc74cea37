package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/water_billing_ledger/internal/models"
	"github.com/SscSPs/water_billing_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accrualColumns = `accrual_id, account_id, period, tariff_id, consumption, water_amount,
	garbage_amount, garden_amount, subtotal, tax_amount, total, created_at, created_by`

const paymentColumns = `payment_id, account_id, amount, payment_date, method, controller_id,
	reference, check_closing_id, created_at, created_by`

// PgxAccrualRepository reads accruals. Inserts happen inside ledger postings.
type PgxAccrualRepository struct {
	BaseRepository
}

func newPgxAccrualRepository(pool *pgxpool.Pool) *PgxAccrualRepository {
	return &PgxAccrualRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccrualRepositoryFacade = (*PgxAccrualRepository)(nil)

func scanAccrual(row pgx.Row) (domain.Accrual, error) {
	var m models.Accrual
	err := row.Scan(
		&m.AccrualID,
		&m.AccountID,
		&m.Period,
		&m.TariffID,
		&m.Consumption,
		&m.Water,
		&m.Garbage,
		&m.Garden,
		&m.Subtotal,
		&m.Tax,
		&m.Total,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	if err != nil {
		return domain.Accrual{}, err
	}
	return mapping.ToDomainAccrual(m), nil
}

// FindAccrualByID returns one accrual.
func (r *PgxAccrualRepository) FindAccrualByID(ctx context.Context, accrualID string) (*domain.Accrual, error) {
	query := `SELECT ` + accrualColumns + ` FROM accruals WHERE accrual_id = $1;`
	a, err := scanAccrual(r.Pool.QueryRow(ctx, query, accrualID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find accrual %s: %w", accrualID, err)
	}
	return &a, nil
}

// ListAccruals returns accruals matching filter.
func (r *PgxAccrualRepository) ListAccruals(ctx context.Context, filter portsrepo.AccrualFilter) ([]domain.Accrual, error) {
	query := `SELECT ` + accrualColumns + ` FROM accruals
		WHERE ($1 = '' OR account_id = $1) AND ($2 = '' OR period = $2)
		ORDER BY period DESC, created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, filter.AccountID, filter.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to list accruals: %w", err)
	}
	defer rows.Close()

	accruals := make([]domain.Accrual, 0)
	for rows.Next() {
		a, err := scanAccrual(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accrual row: %w", err)
		}
		accruals = append(accruals, a)
	}
	return accruals, rows.Err()
}

// ListBilledAccountIDs returns the accounts that already have an accrual for period.
func (r *PgxAccrualRepository) ListBilledAccountIDs(ctx context.Context, period string) (map[string]bool, error) {
	rows, err := r.Pool.Query(ctx, `SELECT account_id FROM accruals WHERE period = $1;`, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list billed accounts for %s: %w", period, err)
	}
	defer rows.Close()

	billed := make(map[string]bool)
	for rows.Next() {
		var accountID string
		if err := rows.Scan(&accountID); err != nil {
			return nil, fmt.Errorf("failed to scan billed account: %w", err)
		}
		billed[accountID] = true
	}
	return billed, rows.Err()
}

// PgxPaymentRepository reads payments. Inserts happen inside ledger postings.
type PgxPaymentRepository struct {
	BaseRepository
}

func newPgxPaymentRepository(pool *pgxpool.Pool) *PgxPaymentRepository {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.AccountID,
		&m.Amount,
		&m.PaymentDate,
		&m.Method,
		&m.ControllerID,
		&m.Reference,
		&m.CheckClosingID,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	if err != nil {
		return domain.Payment{}, err
	}
	return mapping.ToDomainPayment(m), nil
}

func (r *PgxPaymentRepository) queryPayments(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// FindPaymentByID returns one payment.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`
	p, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	return &p, nil
}

// ListPayments returns payments matching filter, newest first.
func (r *PgxPaymentRepository) ListPayments(ctx context.Context, filter portsrepo.PaymentFilter) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE ($1 = '' OR account_id = $1)
			AND ($2 = '' OR controller_id = $2)
			AND ($3::date IS NULL OR payment_date >= $3)
			AND ($4::date IS NULL OR payment_date <= $4)
		ORDER BY payment_date DESC, created_at DESC;`
	payments, err := r.queryPayments(ctx, query, filter.AccountID, filter.ControllerID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// ListOpenPayments returns payments that no bank statement line is linked to yet, oldest first.
func (r *PgxPaymentRepository) ListOpenPayments(ctx context.Context) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p
		WHERE NOT EXISTS (SELECT 1 FROM bank_transactions bt WHERE bt.payment_id = p.payment_id)
		ORDER BY payment_date, created_at;`
	payments, err := r.queryPayments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open payments: %w", err)
	}
	return payments, nil
}
