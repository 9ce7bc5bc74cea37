package billing

import (
	"testing"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTariff() domain.Tariff {
	return domain.Tariff{
		TariffID:         "tariff-1",
		WaterByMeter:     dec("3.5"),
		WaterByPerson:    dec("20"),
		GarbagePrivate:   dec("5"),
		GarbageApartment: dec("3"),
		GardenTiers: []domain.GardenTier{
			{MinPlotSize: dec("100"), AnnualRate: dec("120")},
			{MinPlotSize: dec("500"), AnnualRate: dec("600")},
			{MinPlotSize: dec("1000"), AnnualRate: dec("1000")},
		},
		SalesTaxPercent: dec("12"),
	}
}

func readings(prev, cur string) *domain.ReadingPair {
	return &domain.ReadingPair{
		Previous: domain.MeterReading{Value: dec(prev)},
		Current:  domain.MeterReading{Value: dec(cur)},
	}
}

func TestCalculateAccrual_MeteredWaterWithTax(t *testing.T) {
	tariff := testTariff()
	tariff.GarbageApartment = decimal.Zero
	account := domain.Account{
		AccountID:       "acc-1",
		HouseholdSize:   3,
		BuildingType:    domain.Apartment,
		WaterTariffMode: domain.ByMeter,
	}

	b, err := CalculateAccrual(account, readings("100", "140"), tariff)

	require.NoError(t, err)
	assert.True(t, dec("40").Equal(b.Consumption))
	assert.True(t, dec("140").Equal(b.Water), "water charge: %s", b.Water)
	assert.True(t, dec("156.80").Equal(b.Total), "total: %s", b.Total)
	assert.True(t, dec("16.80").Equal(b.Tax), "tax: %s", b.Tax)
}

func TestCalculateAccrual_RoundsOnlyTotal(t *testing.T) {
	tariff := testTariff()
	tariff.GarbageApartment = decimal.Zero
	account := domain.Account{
		AccountID:       "acc-1",
		HouseholdSize:   1,
		BuildingType:    domain.Apartment,
		WaterTariffMode: domain.ByMeter,
	}

	b, err := CalculateAccrual(account, readings("100", "112.345"), tariff)

	require.NoError(t, err)
	// 12.345 * 3.5 = 43.2075; * 1.12 = 48.39240. Rounding water first would give 48.40.
	assert.True(t, dec("48.39").Equal(b.Total), "total: %s", b.Total)
	assert.True(t, dec("43.21").Equal(b.Water), "water charge: %s", b.Water)
	assert.True(t, dec("43.21").Equal(b.Subtotal), "subtotal: %s", b.Subtotal)
	assert.True(t, dec("5.18").Equal(b.Tax), "tax: %s", b.Tax)
}

func TestCalculateAccrual_GardenMonthlyShare(t *testing.T) {
	tariff := testTariff()
	tariff.WaterByPerson = decimal.Zero
	tariff.GarbagePrivate = decimal.Zero
	account := domain.Account{
		AccountID:       "acc-4",
		HouseholdSize:   1,
		BuildingType:    domain.Private,
		WaterTariffMode: domain.ByPerson,
		HasGarden:       true,
		GardenPlotSize:  dec("1000"),
	}

	b, err := CalculateAccrual(account, nil, tariff)

	require.NoError(t, err)
	// 1000 / 12 = 83.333...; * 1.12 = 93.3333...
	assert.True(t, dec("83.33").Equal(b.Garden), "garden: %s", b.Garden)
	assert.True(t, dec("93.33").Equal(b.Total), "total: %s", b.Total)
}

func TestCalculateAccrual_NegativeConsumption(t *testing.T) {
	account := domain.Account{AccountID: "acc-1", HouseholdSize: 1, BuildingType: domain.Private, WaterTariffMode: domain.ByMeter}

	_, err := CalculateAccrual(account, readings("140", "100"), testTariff())

	assert.ErrorIs(t, err, apperrors.ErrInvalidConsumption)
}

func TestCalculateAccrual_MissingReading(t *testing.T) {
	account := domain.Account{AccountID: "acc-1", HouseholdSize: 1, BuildingType: domain.Private, WaterTariffMode: domain.ByMeter}

	_, err := CalculateAccrual(account, nil, testTariff())

	assert.ErrorIs(t, err, apperrors.ErrMissingReading)
}

func TestCalculateAccrual_ByPersonWithGarbageAndGarden(t *testing.T) {
	account := domain.Account{
		AccountID:       "acc-2",
		HouseholdSize:   4,
		BuildingType:    domain.Private,
		WaterTariffMode: domain.ByPerson,
		HasGarden:       true,
		GardenPlotSize:  dec("600"),
	}

	b, err := CalculateAccrual(account, nil, testTariff())

	require.NoError(t, err)
	assert.True(t, dec("80").Equal(b.Water))   // 4 * 20
	assert.True(t, dec("20").Equal(b.Garbage)) // 4 * 5
	assert.True(t, dec("50").Equal(b.Garden))  // 600 / 12
	assert.True(t, dec("150").Equal(b.Subtotal))
	assert.True(t, dec("168").Equal(b.Total))
}

func TestCalculateAccrual_ApartmentGarbageRate(t *testing.T) {
	account := domain.Account{AccountID: "acc-3", HouseholdSize: 2, BuildingType: domain.Apartment, WaterTariffMode: domain.ByPerson}

	b, err := CalculateAccrual(account, nil, testTariff())

	require.NoError(t, err)
	assert.True(t, dec("6").Equal(b.Garbage))
}

func TestGardenAnnualRate(t *testing.T) {
	tiers := testTariff().GardenTiers
	tests := []struct {
		name string
		plot string
		want string
	}{
		{name: "exact tier match wins", plot: "500", want: "600"},
		{name: "between tiers uses lower tier", plot: "999.99", want: "600"},
		{name: "above largest tier", plot: "5000", want: "1000"},
		{name: "smallest tier", plot: "100", want: "120"},
		{name: "below minimum tier is zero", plot: "99", want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GardenAnnualRate(tiers, dec(tt.plot))
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestGardenAnnualRate_UnsortedTiers(t *testing.T) {
	tiers := []domain.GardenTier{
		{MinPlotSize: dec("1000"), AnnualRate: dec("1000")},
		{MinPlotSize: dec("100"), AnnualRate: dec("120")},
	}
	assert.True(t, dec("120").Equal(GardenAnnualRate(tiers, dec("400"))))
}

func TestApplyPercent_RoundsHalfUp(t *testing.T) {
	// 10.005 rounds up to 10.01
	got := ApplyPercent(dec("10.005"), decimal.Zero)
	assert.Equal(t, "10.01", got.StringFixed(2))
	// 0.125 * 1.2 = 0.15
	assert.Equal(t, "0.15", ApplyPercent(dec("0.125"), dec("20")).StringFixed(2))
}
