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

const accountColumns = `account_id, personal_account, full_name, address, phone, household_size,
	building_type, water_tariff_mode, has_garden, garden_plot_size, status, controller_id,
	balance, overdue_since, created_at, created_by, last_updated_at, last_updated_by`

const insertAccountQuery = `
	INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
`

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.PersonalAccount,
		&m.FullName,
		&m.Address,
		&m.Phone,
		&m.HouseholdSize,
		&m.BuildingType,
		&m.WaterTariffMode,
		&m.HasGarden,
		&m.GardenPlotSize,
		&m.Status,
		&m.ControllerID,
		&m.Balance,
		&m.OverdueSince,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func accountArgs(m models.Account) []any {
	return []any{
		m.AccountID,
		m.PersonalAccount,
		m.FullName,
		m.Address,
		m.Phone,
		m.HouseholdSize,
		m.BuildingType,
		m.WaterTariffMode,
		m.HasGarden,
		m.GardenPlotSize,
		m.Status,
		m.ControllerID,
		m.Balance,
		m.OverdueSince,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	if _, err := r.Pool.Exec(ctx, insertAccountQuery, accountArgs(m)...); err != nil {
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("%w: account with personal account %s already exists", apperrors.ErrDuplicate, m.PersonalAccount)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// SaveAccounts inserts every account in one transaction; either all rows are stored or none.
func (r *PgxAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	for _, acc := range accounts {
		batch.Queue(insertAccountQuery, accountArgs(mapping.ToModelAccount(acc))...)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range accounts {
		if _, err := br.Exec(); err != nil {
			br.Close()
			if uniqueConstraint(err) != "" {
				return fmt.Errorf("%w: personal account %s already exists", apperrors.ErrDuplicate, accounts[i].PersonalAccount)
			}
			return apperrors.NewAppError(500, "failed to insert account "+accounts[i].PersonalAccount, err)
		}
	}
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close account batch", err)
	}

	return r.Commit(ctx, tx)
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return &acc, nil
}

// FindAccountByPersonalAccount retrieves an account by its personal-account number.
func (r *PgxAccountRepository) FindAccountByPersonalAccount(ctx context.Context, personalAccount string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE personal_account = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, personalAccount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by personal account %s: %w", personalAccount, err)
	}
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	accounts, err := r.queryAccounts(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	result := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		result[acc.AccountID] = acc
	}
	return result, nil
}

// ListAccounts retrieves a page of accounts ordered by personal account.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, status domain.AccountStatus, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE ($1 = '' OR status = $1)
		ORDER BY personal_account
		LIMIT $2 OFFSET $3;`
	accounts, err := r.queryAccounts(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// ListActiveAccounts retrieves every ACTIVE account.
func (r *PgxAccountRepository) ListActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status = 'ACTIVE' ORDER BY personal_account;`
	accounts, err := r.queryAccounts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	return accounts, nil
}

// ListAccountsInDebt retrieves every non-archived account with a negative balance.
func (r *PgxAccountRepository) ListAccountsInDebt(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE balance < 0 AND status <> 'ARCHIVED'
		ORDER BY personal_account;`
	accounts, err := r.queryAccounts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts in debt: %w", err)
	}
	return accounts, nil
}

// NextPersonalAccountSequence returns one more than the highest 4-digit suffix in use for prefix.
func (r *PgxAccountRepository) NextPersonalAccountSequence(ctx context.Context, prefix string) (int, error) {
	query := `
		SELECT COALESCE(MAX(CAST(SUBSTRING(personal_account FROM 5 FOR 4) AS INTEGER)), 0)
		FROM accounts
		WHERE personal_account ~ ('^' || $1 || '[0-9]{4}$');
	`
	var current int
	if err := r.Pool.QueryRow(ctx, query, prefix).Scan(&current); err != nil {
		return 0, fmt.Errorf("failed to read personal account sequence for %s: %w", prefix, err)
	}
	return current + 1, nil
}

// UpdateAccount updates the descriptive fields of an account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET full_name = $1, address = $2, phone = $3, household_size = $4, building_type = $5,
			water_tariff_mode = $6, has_garden = $7, garden_plot_size = $8, status = $9,
			controller_id = $10, last_updated_at = $11, last_updated_by = $12
		WHERE account_id = $13;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.FullName,
		m.Address,
		m.Phone,
		m.HouseholdSize,
		m.BuildingType,
		m.WaterTariffMode,
		m.HasGarden,
		m.GardenPlotSize,
		m.Status,
		m.ControllerID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.AccountID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ArchiveAccount marks an account as archived. Accounts are never deleted.
func (r *PgxAccountRepository) ArchiveAccount(ctx context.Context, accountID string, actor string, now time.Time) error {
	query := `
		UPDATE accounts
		SET status = 'ARCHIVED', last_updated_at = $1, last_updated_by = $2
		WHERE account_id = $3;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, now, actor, accountID)
	if err != nil {
		return fmt.Errorf("failed to archive account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountForUpdate selects an account and locks its row within tx.
func (r *PgxAccountRepository) FindAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`
	acc, err := scanAccount(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return &acc, nil
}

// UpdateBalanceInTx writes the balance and overdue marker of a locked account.
func (r *PgxAccountRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal, overdueSince *time.Time, actor string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = $1, overdue_since = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $5;
	`
	cmdTag, err := tx.Exec(ctx, query, balance, overdueSince, now, actor, accountID)
	if err != nil {
		return fmt.Errorf("failed to update balance of account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
