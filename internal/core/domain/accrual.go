package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BillingPeriod is a calendar month.
type BillingPeriod struct {
	Year  int
	Month time.Month
}

// ParseBillingPeriod parses "YYYY-MM".
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return BillingPeriod{}, fmt.Errorf("invalid billing period %q, expected YYYY-MM: %w", s, err)
	}
	return BillingPeriod{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the billing period containing t.
func PeriodOf(t time.Time) BillingPeriod {
	return BillingPeriod{Year: t.Year(), Month: t.Month()}
}

func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is the first instant of the period in UTC.
func (p BillingPeriod) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following period (exclusive bound).
func (p BillingPeriod) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Previous returns the month before p.
func (p BillingPeriod) Previous() BillingPeriod {
	return PeriodOf(p.Start().AddDate(0, -1, 0))
}

// AccrualBreakdown is the itemized monthly charge for one account.
type AccrualBreakdown struct {
	Consumption decimal.Decimal `json:"consumption"`
	Water       decimal.Decimal `json:"water"`
	Garbage     decimal.Decimal `json:"garbage"`
	Garden      decimal.Decimal `json:"garden"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// Accrual is the charge posted to an account for one billing period.
// There is at most one per (account, period).
type Accrual struct {
	AccrualID string `json:"accrualID"`
	AccountID string `json:"accountID"`
	Period    string `json:"period"` // YYYY-MM
	TariffID  string `json:"tariffID"`
	AccrualBreakdown
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// AccountFailure is one account that a batch job could not process.
type AccountFailure struct {
	AccountID string `json:"accountID"`
	Reason    string `json:"reason"`
	Err       error  `json:"-"`
}

// AccrualRunResult summarizes one accrual generation pass.
type AccrualRunResult struct {
	Period   string           `json:"period"`
	Accruals []Accrual        `json:"accruals"`
	Skipped  []string         `json:"skipped"` // accounts already billed for the period
	Failures []AccountFailure `json:"failures"`
}

// TotalCharged sums the totals of the accruals created in this run.
func (r AccrualRunResult) TotalCharged() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range r.Accruals {
		sum = sum.Add(a.Total)
	}
	return sum
}
