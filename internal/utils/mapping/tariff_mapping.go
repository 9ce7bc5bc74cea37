package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/models"
)

// ToModelTariff converts a domain Tariff to a model Tariff, encoding the garden tiers as JSON.
func ToModelTariff(d domain.Tariff) (models.Tariff, error) {
	tiers := make([]models.GardenTier, len(d.GardenTiers))
	for i, t := range d.GardenTiers {
		tiers[i] = models.GardenTier{MinPlotSize: t.MinPlotSize, AnnualRate: t.AnnualRate}
	}
	raw, err := json.Marshal(tiers)
	if err != nil {
		return models.Tariff{}, fmt.Errorf("failed to encode garden tiers: %w", err)
	}
	return models.Tariff{
		TariffID:           d.TariffID,
		Version:            d.Version,
		EffectiveFrom:      d.EffectiveFrom,
		WaterByMeter:       d.WaterByMeter,
		WaterByPerson:      d.WaterByPerson,
		GarbagePrivate:     d.GarbagePrivate,
		GarbageApartment:   d.GarbageApartment,
		GardenTiers:        raw,
		SalesTaxPercent:    d.SalesTaxPercent,
		PenaltyRatePercent: d.PenaltyRatePercent,
		IsActive:           d.IsActive,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainTariff converts a model Tariff to a domain Tariff.
func ToDomainTariff(m models.Tariff) (domain.Tariff, error) {
	var tiers []models.GardenTier
	if len(m.GardenTiers) > 0 {
		if err := json.Unmarshal(m.GardenTiers, &tiers); err != nil {
			return domain.Tariff{}, fmt.Errorf("failed to decode garden tiers of tariff %s: %w", m.TariffID, err)
		}
	}
	d := domain.Tariff{
		TariffID:           m.TariffID,
		Version:            m.Version,
		EffectiveFrom:      m.EffectiveFrom,
		WaterByMeter:       m.WaterByMeter,
		WaterByPerson:      m.WaterByPerson,
		GarbagePrivate:     m.GarbagePrivate,
		GarbageApartment:   m.GarbageApartment,
		GardenTiers:        make([]domain.GardenTier, len(tiers)),
		SalesTaxPercent:    m.SalesTaxPercent,
		PenaltyRatePercent: m.PenaltyRatePercent,
		IsActive:           m.IsActive,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
	for i, t := range tiers {
		d.GardenTiers[i] = domain.GardenTier{MinPlotSize: t.MinPlotSize, AnnualRate: t.AnnualRate}
	}
	return d, nil
}
