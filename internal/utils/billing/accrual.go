// Package billing holds the pure money calculations of the ledger: monthly accrual breakdowns
// and daily debt penalties. Nothing here touches storage or the clock.
package billing

import (
	"fmt"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GardenAnnualRate returns the annual rate of the nearest tier whose minimum plot size is at or
// below plotSize. Below the smallest tier the rate is zero.
func GardenAnnualRate(tiers []domain.GardenTier, plotSize decimal.Decimal) decimal.Decimal {
	rate := decimal.Zero
	found := false
	var best decimal.Decimal
	for _, tier := range tiers {
		if tier.MinPlotSize.GreaterThan(plotSize) {
			continue
		}
		if !found || tier.MinPlotSize.GreaterThan(best) {
			best = tier.MinPlotSize
			rate = tier.AnnualRate
			found = true
		}
	}
	return rate
}

// CalculateAccrual computes the monthly charge for one account. readings may be nil for
// BY_PERSON accounts. Total is taxed from the unrounded line items and rounded once; the
// itemized amounts are rounded for display only.
func CalculateAccrual(account domain.Account, readings *domain.ReadingPair, tariff domain.Tariff) (domain.AccrualBreakdown, error) {
	var b domain.AccrualBreakdown
	household := decimal.NewFromInt(int64(account.HouseholdSize))

	var water decimal.Decimal
	switch account.WaterTariffMode {
	case domain.ByMeter:
		if readings == nil {
			return b, fmt.Errorf("account %s: %w", account.AccountID, apperrors.ErrMissingReading)
		}
		consumption := readings.Consumption()
		if consumption.IsNegative() {
			return b, fmt.Errorf("account %s: reading %s is below previous %s: %w",
				account.AccountID, readings.Current.Value.String(), readings.Previous.Value.String(), apperrors.ErrInvalidConsumption)
		}
		b.Consumption = consumption
		water = consumption.Mul(tariff.WaterByMeter)
	case domain.ByPerson:
		water = household.Mul(tariff.WaterByPerson)
	default:
		return b, fmt.Errorf("account %s: unknown water tariff mode %q: %w", account.AccountID, account.WaterTariffMode, apperrors.ErrValidation)
	}

	garbage := household.Mul(tariff.GarbageRate(account.BuildingType))

	garden := decimal.Zero
	if account.HasGarden {
		garden = GardenAnnualRate(tariff.GardenTiers, account.GardenPlotSize).Div(twelve)
	}

	b.Total = ApplyPercent(water.Add(garbage).Add(garden), tariff.SalesTaxPercent)

	b.Water = RoundMoney(water)
	b.Garbage = RoundMoney(garbage)
	b.Garden = RoundMoney(garden)
	b.Subtotal = RoundMoney(water.Add(garbage).Add(garden))
	b.Tax = b.Total.Sub(b.Subtotal)
	return b, nil
}
