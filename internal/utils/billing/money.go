package billing

import "github.com/shopspring/decimal"

const moneyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// RoundMoney rounds to cents, half away from zero (half-up for the positive amounts we bill).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// ApplyPercent returns amount * (1 + percent/100) rounded to cents.
func ApplyPercent(amount, percent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(percent.Div(hundred))
	return RoundMoney(amount.Mul(factor))
}
