package services

import (
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/platform/config"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
)

// Infrastructure bundles the non-database collaborators of the services.
// Archive and Sheets may be nil when not configured.
type Infrastructure struct {
	Locker  ports.Locker
	Events  ports.EventPublisher
	Archive ports.StatementArchive
	Sheets  ports.SheetReader
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, infra Infrastructure, clk clock.Clock) *portssvc.ServiceContainer {
	base := []ServiceOption{WithClock(clk), WithEventPublisher(infra.Events)}
	container := &portssvc.ServiceContainer{}

	// Ledger first: every balance-moving service posts through it.
	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.AccountRepo, base...)

	container.Account = NewAccountService(repos.AccountRepo, base...)
	container.Tariff = NewTariffService(repos.TariffRepo, base...)
	container.Reading = NewMeterReadingService(repos.ReadingRepo, repos.AccountRepo, base...)
	container.Payment = NewPaymentService(repos.PaymentRepo, repos.AccountRepo, container.Ledger, base...)

	container.Accrual = NewAccrualService(
		repos.AccountRepo,
		repos.TariffRepo,
		repos.ReadingRepo,
		repos.AccrualRepo,
		container.Ledger,
		infra.Locker,
		AccrualServiceConfig{Workers: cfg.Billing.AccrualWorkers, LockTTL: cfg.Redis.LockTTL},
		base...,
	)

	container.DebtCase = NewDebtCaseService(
		repos.AccountRepo,
		repos.DebtCaseRepo,
		repos.TariffRepo,
		container.Ledger,
		infra.Locker,
		DebtCaseServiceConfig{
			Policy: domain.DebtPolicy{
				GracePeriodDays:  cfg.Debt.GracePeriodDays,
				MinDebtForAction: cfg.Debt.MinDebtForAction,
			},
			LockTTL: cfg.Redis.LockTTL,
		},
		base...,
	)

	reconOptions := []ReconciliationOption{}
	if infra.Archive != nil {
		reconOptions = append(reconOptions, WithStatementArchive(infra.Archive))
	}
	if infra.Sheets != nil {
		reconOptions = append(reconOptions, WithSheetReader(infra.Sheets))
	}
	container.Reconciliation = NewReconciliationService(
		repos.StatementRepo,
		repos.PaymentRepo,
		repos.AccountRepo,
		container.Ledger,
		base,
		reconOptions...,
	)

	container.CheckClosing = NewCheckClosingService(repos.CheckClosingRepo, infra.Locker, cfg.Redis.LockTTL, base...)

	return container
}
