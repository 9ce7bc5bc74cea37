package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// GardenTier is an annual irrigation rate for plots of at least MinPlotSize.
type GardenTier struct {
	MinPlotSize decimal.Decimal `json:"minPlotSize"`
	AnnualRate  decimal.Decimal `json:"annualRate"`
}

// Tariff is one version of the rate table. Only one version is active at a time and a version
// referenced by an accrual is never edited; changes create a new version.
type Tariff struct {
	TariffID           string          `json:"tariffID"`
	Version            int             `json:"version"`
	EffectiveFrom      time.Time       `json:"effectiveFrom"`
	WaterByMeter       decimal.Decimal `json:"waterByMeter"`  // per m3
	WaterByPerson      decimal.Decimal `json:"waterByPerson"` // per household member
	GarbagePrivate     decimal.Decimal `json:"garbagePrivate"`
	GarbageApartment   decimal.Decimal `json:"garbageApartment"`
	GardenTiers        []GardenTier    `json:"gardenTiers"`
	SalesTaxPercent    decimal.Decimal `json:"salesTaxPercent"`
	PenaltyRatePercent decimal.Decimal `json:"penaltyRatePercent"` // daily
	IsActive           bool            `json:"isActive"`
	AuditFields
}

// SortedGardenTiers returns the tiers ordered by ascending minimum plot size.
func (t Tariff) SortedGardenTiers() []GardenTier {
	tiers := make([]GardenTier, len(t.GardenTiers))
	copy(tiers, t.GardenTiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinPlotSize.LessThan(tiers[j].MinPlotSize)
	})
	return tiers
}

// GarbageRate returns the per-person garbage rate for the building type.
func (t Tariff) GarbageRate(b BuildingType) decimal.Decimal {
	if b == Private {
		return t.GarbagePrivate
	}
	return t.GarbageApartment
}
