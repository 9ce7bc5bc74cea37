package services

import (
	"context"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
)

// TariffSvcFacade manages tariff versions.
type TariffSvcFacade interface {
	// CreateTariff stores a new version and makes it the active one.
	CreateTariff(ctx context.Context, req dto.CreateTariffRequest, actor string) (*domain.Tariff, error)
	// GetActiveTariff fails with ErrMissingTariff when no version is active.
	GetActiveTariff(ctx context.Context) (*domain.Tariff, error)
	GetTariffByID(ctx context.Context, tariffID string) (*domain.Tariff, error)
	ListTariffs(ctx context.Context) ([]domain.Tariff, error)
}
