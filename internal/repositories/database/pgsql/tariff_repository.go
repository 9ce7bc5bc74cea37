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

const tariffColumns = `tariff_id, version, effective_from, water_by_meter, water_by_person,
	garbage_private, garbage_apartment, garden_tiers, sales_tax_percent, penalty_rate_percent,
	is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxTariffRepository struct {
	BaseRepository
}

func newPgxTariffRepository(pool *pgxpool.Pool) *PgxTariffRepository {
	return &PgxTariffRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TariffRepositoryFacade = (*PgxTariffRepository)(nil)

func scanTariff(row pgx.Row) (domain.Tariff, error) {
	var m models.Tariff
	err := row.Scan(
		&m.TariffID,
		&m.Version,
		&m.EffectiveFrom,
		&m.WaterByMeter,
		&m.WaterByPerson,
		&m.GarbagePrivate,
		&m.GarbageApartment,
		&m.GardenTiers,
		&m.SalesTaxPercent,
		&m.PenaltyRatePercent,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Tariff{}, err
	}
	return mapping.ToDomainTariff(m)
}

// FindActiveTariff returns the active tariff version.
func (r *PgxTariffRepository) FindActiveTariff(ctx context.Context) (*domain.Tariff, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariffs WHERE is_active;`
	t, err := scanTariff(r.Pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active tariff: %w", err)
	}
	return &t, nil
}

// FindTariffByID returns one tariff version.
func (r *PgxTariffRepository) FindTariffByID(ctx context.Context, tariffID string) (*domain.Tariff, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariffs WHERE tariff_id = $1;`
	t, err := scanTariff(r.Pool.QueryRow(ctx, query, tariffID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tariff %s: %w", tariffID, err)
	}
	return &t, nil
}

// ListTariffs returns every version, newest first.
func (r *PgxTariffRepository) ListTariffs(ctx context.Context) ([]domain.Tariff, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariffs ORDER BY version DESC;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tariffs: %w", err)
	}
	defer rows.Close()

	tariffs := make([]domain.Tariff, 0)
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tariff row: %w", err)
		}
		tariffs = append(tariffs, t)
	}
	return tariffs, rows.Err()
}

// SaveTariffVersion stores tariff as the next active version. The table lock serializes
// concurrent version bumps so version numbers stay gap-free and unique.
func (r *PgxTariffRepository) SaveTariffVersion(ctx context.Context, tariff domain.Tariff) (*domain.Tariff, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `LOCK TABLE tariffs IN SHARE ROW EXCLUSIVE MODE;`); err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock tariffs", err)
	}

	var current int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM tariffs;`).Scan(&current); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read current tariff version", err)
	}
	tariff.Version = current + 1
	tariff.IsActive = true

	if _, err := tx.Exec(ctx,
		`UPDATE tariffs SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2 WHERE is_active;`,
		tariff.CreatedAt, tariff.CreatedBy,
	); err != nil {
		return nil, apperrors.NewAppError(500, "failed to deactivate previous tariff", err)
	}

	m, err := mapping.ToModelTariff(tariff)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO tariffs (` + tariffColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`
	_, err = tx.Exec(ctx, query,
		m.TariffID,
		m.Version,
		m.EffectiveFrom,
		m.WaterByMeter,
		m.WaterByPerson,
		m.GarbagePrivate,
		m.GarbageApartment,
		m.GardenTiers,
		m.SalesTaxPercent,
		m.PenaltyRatePercent,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return nil, fmt.Errorf("%w: tariff version %d", apperrors.ErrDuplicate, m.Version)
		}
		return nil, apperrors.NewAppError(500, "failed to insert tariff "+m.TariffID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &tariff, nil
}
