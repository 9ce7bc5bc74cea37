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
)

const readingColumns = `reading_id, account_id, reading_date, value, manual_override,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxMeterReadingRepository struct {
	BaseRepository
}

func newPgxMeterReadingRepository(pool *pgxpool.Pool) *PgxMeterReadingRepository {
	return &PgxMeterReadingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MeterReadingRepositoryFacade = (*PgxMeterReadingRepository)(nil)

func scanReading(row pgx.Row) (domain.MeterReading, error) {
	var m models.MeterReading
	err := row.Scan(
		&m.ReadingID,
		&m.AccountID,
		&m.ReadingDate,
		&m.Value,
		&m.ManualOverride,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.MeterReading{}, err
	}
	return mapping.ToDomainMeterReading(m), nil
}

// SaveReading inserts a meter reading.
func (r *PgxMeterReadingRepository) SaveReading(ctx context.Context, reading domain.MeterReading) error {
	m := mapping.ToModelMeterReading(reading)
	query := `INSERT INTO meter_readings (` + readingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err := r.Pool.Exec(ctx, query,
		m.ReadingID,
		m.AccountID,
		m.ReadingDate,
		m.Value,
		m.ManualOverride,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save meter reading for account %s: %w", m.AccountID, err)
	}
	return nil
}

func (r *PgxMeterReadingRepository) findOne(ctx context.Context, query string, args ...any) (*domain.MeterReading, error) {
	reading, err := scanReading(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &reading, nil
}

// FindLatestReadingBefore returns the latest reading dated strictly before 'before'.
func (r *PgxMeterReadingRepository) FindLatestReadingBefore(ctx context.Context, accountID string, before time.Time) (*domain.MeterReading, error) {
	query := `SELECT ` + readingColumns + ` FROM meter_readings
		WHERE account_id = $1 AND reading_date < $2
		ORDER BY reading_date DESC, created_at DESC
		LIMIT 1;`
	reading, err := r.findOne(ctx, query, accountID, before)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find reading before %s for account %s: %w", before.Format(time.DateOnly), accountID, err)
	}
	return reading, err
}

// FindEarliestReadingAfter returns the earliest reading dated strictly after 'after'.
func (r *PgxMeterReadingRepository) FindEarliestReadingAfter(ctx context.Context, accountID string, after time.Time) (*domain.MeterReading, error) {
	query := `SELECT ` + readingColumns + ` FROM meter_readings
		WHERE account_id = $1 AND reading_date > $2
		ORDER BY reading_date ASC, created_at ASC
		LIMIT 1;`
	reading, err := r.findOne(ctx, query, accountID, after)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find reading after %s for account %s: %w", after.Format(time.DateOnly), accountID, err)
	}
	return reading, err
}

// FindLatestReadingInRange returns the latest reading dated in [from, to).
func (r *PgxMeterReadingRepository) FindLatestReadingInRange(ctx context.Context, accountID string, from, to time.Time) (*domain.MeterReading, error) {
	query := `SELECT ` + readingColumns + ` FROM meter_readings
		WHERE account_id = $1 AND reading_date >= $2 AND reading_date < $3
		ORDER BY reading_date DESC, created_at DESC
		LIMIT 1;`
	reading, err := r.findOne(ctx, query, accountID, from, to)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find reading in range for account %s: %w", accountID, err)
	}
	return reading, err
}

// ListReadings returns the readings of an account, newest first.
func (r *PgxMeterReadingRepository) ListReadings(ctx context.Context, accountID string) ([]domain.MeterReading, error) {
	query := `SELECT ` + readingColumns + ` FROM meter_readings
		WHERE account_id = $1
		ORDER BY reading_date DESC, created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings for account %s: %w", accountID, err)
	}
	defer rows.Close()

	readings := make([]domain.MeterReading, 0)
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meter reading row: %w", err)
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
