package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryFacade
	TariffRepo       TariffRepositoryFacade
	ReadingRepo      MeterReadingRepositoryFacade
	AccrualRepo      AccrualRepositoryFacade
	PaymentRepo      PaymentRepositoryFacade
	LedgerRepo       LedgerRepositoryFacade
	DebtCaseRepo     DebtCaseRepositoryFacade
	StatementRepo    BankStatementRepositoryFacade
	CheckClosingRepo CheckClosingRepositoryFacade
}
