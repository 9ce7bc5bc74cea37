package billing

import (
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PenaltyQuote is the outcome of evaluating one account for a daily penalty.
type PenaltyQuote struct {
	Applies  bool
	BaseDebt decimal.Decimal
	DaysOver int
	Amount   decimal.Decimal
}

// QuotePenalty evaluates abs(balance) * rate/100 * (daysOverdue - grace).
// Accounts not in debt, still inside the grace period, or owing less than the action threshold
// get a quote with Applies == false.
func QuotePenalty(balance decimal.Decimal, ratePercent decimal.Decimal, daysOverdue int, policy domain.DebtPolicy) PenaltyQuote {
	q := PenaltyQuote{BaseDebt: balance.Abs(), Amount: decimal.Zero}
	if !balance.IsNegative() || daysOverdue <= policy.GracePeriodDays {
		return q
	}
	if q.BaseDebt.LessThan(policy.MinDebtForAction) {
		return q
	}
	q.DaysOver = daysOverdue - policy.GracePeriodDays
	q.Amount = RoundMoney(q.BaseDebt.Mul(ratePercent).Div(hundred).Mul(decimal.NewFromInt(int64(q.DaysOver))))
	q.Applies = q.Amount.IsPositive()
	return q
}

// ShouldEscalate reports whether a Monitoring case qualifies for an automatic warning.
func ShouldEscalate(balance decimal.Decimal, daysOverdue int, policy domain.DebtPolicy) bool {
	return balance.IsNegative() &&
		daysOverdue > policy.GracePeriodDays &&
		balance.Abs().GreaterThanOrEqual(policy.MinDebtForAction)
}
