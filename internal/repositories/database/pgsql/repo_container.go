package pgsql

import (
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every Postgres repository onto one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      accountRepo,
		TariffRepo:       newPgxTariffRepository(dbPool),
		ReadingRepo:      newPgxMeterReadingRepository(dbPool),
		AccrualRepo:      newPgxAccrualRepository(dbPool),
		PaymentRepo:      newPgxPaymentRepository(dbPool),
		LedgerRepo:       newPgxLedgerRepository(dbPool, accountRepo),
		DebtCaseRepo:     newPgxDebtCaseRepository(dbPool),
		StatementRepo:    newPgxBankStatementRepository(dbPool),
		CheckClosingRepo: newPgxCheckClosingRepository(dbPool),
	}
}
