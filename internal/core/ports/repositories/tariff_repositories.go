package repositories

import (
	"context"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// TariffReader defines read operations for tariff versions
type TariffReader interface {
	// FindActiveTariff returns the single active version, or ErrNotFound.
	FindActiveTariff(ctx context.Context) (*domain.Tariff, error)

	FindTariffByID(ctx context.Context, tariffID string) (*domain.Tariff, error)

	// ListTariffs returns every version, newest first.
	ListTariffs(ctx context.Context) ([]domain.Tariff, error)
}

// TariffWriter defines write operations for tariff versions
type TariffWriter interface {
	// SaveTariffVersion assigns the next version number, deactivates the current version and
	// inserts tariff as the active one. The stored tariff is returned.
	SaveTariffVersion(ctx context.Context, tariff domain.Tariff) (*domain.Tariff, error)
}

// TariffRepositoryFacade combines all tariff-related repository interfaces
type TariffRepositoryFacade interface {
	TariffReader
	TariffWriter
}
