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

const bankTransactionColumns = `transaction_id, statement_id, line_number, txn_date, amount, description,
	source_bank, status, account_id, payment_id, matched_at, matched_by`

type PgxBankStatementRepository struct {
	BaseRepository
}

func newPgxBankStatementRepository(pool *pgxpool.Pool) *PgxBankStatementRepository {
	return &PgxBankStatementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BankStatementRepositoryFacade = (*PgxBankStatementRepository)(nil)

func scanBankTransaction(row pgx.Row) (domain.BankStatementTransaction, error) {
	var m models.BankTransaction
	err := row.Scan(
		&m.TransactionID,
		&m.StatementID,
		&m.LineNumber,
		&m.TxnDate,
		&m.Amount,
		&m.Description,
		&m.SourceBank,
		&m.Status,
		&m.AccountID,
		&m.PaymentID,
		&m.MatchedAt,
		&m.MatchedBy,
	)
	if err != nil {
		return domain.BankStatementTransaction{}, err
	}
	return mapping.ToDomainBankTransaction(m), nil
}

// linkBankTransaction advances an UNMATCHED line. The partial unique index on payment_id rejects a
// payment that another line already consumed.
func linkBankTransaction(ctx context.Context, tx pgx.Tx, match domain.BankMatch, accountID, paymentID string) error {
	if !domain.Unmatched.CanAdvanceTo(match.Status) {
		return fmt.Errorf("%w: cannot move a bank transaction to %s", apperrors.ErrValidation, match.Status)
	}
	cmdTag, err := tx.Exec(ctx, `
		UPDATE bank_transactions
		SET status = $1, account_id = $2, payment_id = $3, matched_at = $4, matched_by = $5
		WHERE transaction_id = $6 AND status = 'UNMATCHED';`,
		string(match.Status), accountID, paymentID, match.MatchedAt, match.MatchedBy, match.TransactionID,
	)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("%w: payment %s is already linked to a bank transaction", apperrors.ErrConflict, paymentID)
		}
		return apperrors.NewAppError(500, "failed to link bank transaction "+match.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bank transaction %s is not unmatched", apperrors.ErrConflict, match.TransactionID)
	}
	return nil
}

// SaveStatement inserts a statement and all of its lines; a failure on any line stores nothing.
func (r *PgxBankStatementRepository) SaveStatement(ctx context.Context, statement domain.BankStatement, txns []domain.BankStatementTransaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	s := mapping.ToModelBankStatement(statement)
	_, err = tx.Exec(ctx, `INSERT INTO bank_statements (statement_id, source_bank, file_name, fingerprint,
			row_count, archive_key, imported_at, imported_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		s.StatementID, s.SourceBank, s.FileName, s.Fingerprint, s.RowCount, s.ArchiveKey, s.ImportedAt, s.ImportedBy,
	)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("%w: statement with fingerprint %s was already imported", apperrors.ErrDuplicate, s.Fingerprint)
		}
		return apperrors.NewAppError(500, "failed to insert bank statement "+s.FileName, err)
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO bank_transactions (` + bankTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`
	for _, t := range txns {
		m := mapping.ToModelBankTransaction(t)
		batch.Queue(query,
			m.TransactionID,
			m.StatementID,
			m.LineNumber,
			m.TxnDate,
			m.Amount,
			m.Description,
			m.SourceBank,
			m.Status,
			m.AccountID,
			m.PaymentID,
			m.MatchedAt,
			m.MatchedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines of bank statement "+s.FileName, err)
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID returns one statement line.
func (r *PgxBankStatementRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankStatementTransaction, error) {
	query := `SELECT ` + bankTransactionColumns + ` FROM bank_transactions WHERE transaction_id = $1;`
	t, err := scanBankTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bank transaction %s: %w", transactionID, err)
	}
	return &t, nil
}

// ListTransactions returns lines in status, or all lines when status is empty, oldest first.
func (r *PgxBankStatementRepository) ListTransactions(ctx context.Context, status domain.MatchStatus) ([]domain.BankStatementTransaction, error) {
	query := `SELECT ` + bankTransactionColumns + ` FROM bank_transactions
		WHERE ($1 = '' OR status = $1)
		ORDER BY txn_date, statement_id, line_number;`
	rows, err := r.Pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]domain.BankStatementTransaction, 0)
	for rows.Next() {
		t, err := scanBankTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// LinkTransaction links an UNMATCHED line to an existing payment.
func (r *PgxBankStatementRepository) LinkTransaction(ctx context.Context, match domain.BankMatch, accountID string, paymentID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := linkBankTransaction(ctx, tx, match, accountID, paymentID); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
