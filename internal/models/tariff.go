package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tariff is a row of the tariffs table. GardenTiers holds the JSONB tier list.
type Tariff struct {
	TariffID           string          `db:"tariff_id"`
	Version            int             `db:"version"`
	EffectiveFrom      time.Time       `db:"effective_from"`
	WaterByMeter       decimal.Decimal `db:"water_by_meter"`
	WaterByPerson      decimal.Decimal `db:"water_by_person"`
	GarbagePrivate     decimal.Decimal `db:"garbage_private"`
	GarbageApartment   decimal.Decimal `db:"garbage_apartment"`
	GardenTiers        []byte          `db:"garden_tiers"`
	SalesTaxPercent    decimal.Decimal `db:"sales_tax_percent"`
	PenaltyRatePercent decimal.Decimal `db:"penalty_rate_percent"`
	IsActive           bool            `db:"is_active"`
	AuditFields
}

// GardenTier is the JSON shape of one garden tier.
type GardenTier struct {
	MinPlotSize decimal.Decimal `json:"min_plot_size"`
	AnnualRate  decimal.Decimal `json:"annual_rate"`
}
