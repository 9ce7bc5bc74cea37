package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers and the CLI.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Tariff         TariffSvcFacade
	Reading        MeterReadingSvcFacade
	Accrual        AccrualSvcFacade
	Payment        PaymentSvcFacade
	Ledger         LedgerSvcFacade
	DebtCase       DebtCaseSvcFacade
	Reconciliation ReconciliationSvcFacade
	CheckClosing   CheckClosingSvcFacade
}
