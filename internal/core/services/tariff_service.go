package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type tariffService struct {
	BaseService
	tariffRepo portsrepo.TariffRepositoryFacade
}

// NewTariffService creates a new tariff service.
func NewTariffService(tariffRepo portsrepo.TariffRepositoryFacade, options ...ServiceOption) portssvc.TariffSvcFacade {
	return &tariffService{
		BaseService: newBaseService(options),
		tariffRepo:  tariffRepo,
	}
}

var _ portssvc.TariffSvcFacade = (*tariffService)(nil)

func (s *tariffService) CreateTariff(ctx context.Context, req dto.CreateTariffRequest, actor string) (*domain.Tariff, error) {
	effectiveFrom, err := time.Parse(time.DateOnly, req.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid effectiveFrom %q", apperrors.ErrValidation, req.EffectiveFrom)
	}

	rates := []struct {
		name  string
		value decimal.Decimal
	}{
		{"waterByMeter", req.WaterByMeter},
		{"waterByPerson", req.WaterByPerson},
		{"garbagePrivate", req.GarbagePrivate},
		{"garbageApartment", req.GarbageApartment},
		{"salesTaxPercent", req.SalesTaxPercent},
		{"penaltyRatePercent", req.PenaltyRatePercent},
	}
	for _, rate := range rates {
		if rate.value.IsNegative() {
			return nil, fmt.Errorf("%w: %s must not be negative", apperrors.ErrValidation, rate.name)
		}
	}

	tiers := make([]domain.GardenTier, 0, len(req.GardenTiers))
	seen := make(map[string]bool, len(req.GardenTiers))
	for i, t := range req.GardenTiers {
		if t.MinPlotSize.IsNegative() || t.AnnualRate.IsNegative() {
			return nil, fmt.Errorf("%w: garden tier %d has a negative value", apperrors.ErrValidation, i+1)
		}
		key := t.MinPlotSize.String()
		if seen[key] {
			return nil, fmt.Errorf("%w: garden tier for plot size %s is defined twice", apperrors.ErrValidation, key)
		}
		seen[key] = true
		tiers = append(tiers, domain.GardenTier{MinPlotSize: t.MinPlotSize, AnnualRate: t.AnnualRate})
	}

	tariff := domain.Tariff{
		TariffID:           uuid.NewString(),
		EffectiveFrom:      effectiveFrom,
		WaterByMeter:       req.WaterByMeter,
		WaterByPerson:      req.WaterByPerson,
		GarbagePrivate:     req.GarbagePrivate,
		GarbageApartment:   req.GarbageApartment,
		GardenTiers:        tiers,
		SalesTaxPercent:    req.SalesTaxPercent,
		PenaltyRatePercent: req.PenaltyRatePercent,
		IsActive:           true,
		AuditFields:        domain.NewAuditFields(actor, s.Now()),
	}
	tariff.GardenTiers = tariff.SortedGardenTiers()

	saved, err := s.tariffRepo.SaveTariffVersion(ctx, tariff)
	if err != nil {
		s.LogError(ctx, err, "Failed to save tariff version")
		return nil, err
	}

	s.LogInfo(ctx, "Tariff version activated",
		slog.String("tariff_id", saved.TariffID),
		slog.Int("version", saved.Version))
	return saved, nil
}

func (s *tariffService) GetActiveTariff(ctx context.Context) (*domain.Tariff, error) {
	tariff, err := s.tariffRepo.FindActiveTariff(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrMissingTariff
		}
		return nil, err
	}
	return tariff, nil
}

func (s *tariffService) GetTariffByID(ctx context.Context, tariffID string) (*domain.Tariff, error) {
	return s.tariffRepo.FindTariffByID(ctx, tariffID)
}

func (s *tariffService) ListTariffs(ctx context.Context) ([]domain.Tariff, error) {
	return s.tariffRepo.ListTariffs(ctx)
}
