package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeterReading is a water meter value recorded for an account on a date.
type MeterReading struct {
	ReadingID      string          `json:"readingID"`
	AccountID      string          `json:"accountID"`
	ReadingDate    time.Time       `json:"readingDate"`
	Value          decimal.Decimal `json:"value"`
	ManualOverride bool            `json:"manualOverride"` // allows a value below the previous one
	AuditFields
}

// ReadingPair is the current reading of a billing period and the one before it.
type ReadingPair struct {
	Previous MeterReading
	Current  MeterReading
}

// Consumption is current minus previous. It may be negative; callers decide what that means.
func (p ReadingPair) Consumption() decimal.Decimal {
	return p.Current.Value.Sub(p.Previous.Value)
}
