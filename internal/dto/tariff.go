package dto

import (
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GardenTierRequest is one irrigation tier of a tariff.
type GardenTierRequest struct {
	MinPlotSize decimal.Decimal `json:"minPlotSize"`
	AnnualRate  decimal.Decimal `json:"annualRate"`
}

// CreateTariffRequest defines a new tariff version. It becomes the active version.
type CreateTariffRequest struct {
	EffectiveFrom      string              `json:"effectiveFrom" binding:"required,datetime=2006-01-02"`
	WaterByMeter       decimal.Decimal     `json:"waterByMeter"`
	WaterByPerson      decimal.Decimal     `json:"waterByPerson"`
	GarbagePrivate     decimal.Decimal     `json:"garbagePrivate"`
	GarbageApartment   decimal.Decimal     `json:"garbageApartment"`
	GardenTiers        []GardenTierRequest `json:"gardenTiers" binding:"dive"`
	SalesTaxPercent    decimal.Decimal     `json:"salesTaxPercent"`
	PenaltyRatePercent decimal.Decimal     `json:"penaltyRatePercent"`
}

// ListTariffsResponse wraps the list of tariff versions.
type ListTariffsResponse struct {
	Tariffs []domain.Tariff `json:"tariffs"`
}
