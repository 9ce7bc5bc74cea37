package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeterReading is a row of the meter_readings table.
type MeterReading struct {
	ReadingID      string          `db:"reading_id"`
	AccountID      string          `db:"account_id"`
	ReadingDate    time.Time       `db:"reading_date"`
	Value          decimal.Decimal `db:"value"`
	ManualOverride bool            `db:"manual_override"`
	AuditFields
}

// Accrual is a row of the accruals table.
type Accrual struct {
	AccrualID   string          `db:"accrual_id"`
	AccountID   string          `db:"account_id"`
	Period      string          `db:"period"`
	TariffID    string          `db:"tariff_id"`
	Consumption decimal.Decimal `db:"consumption"`
	Water       decimal.Decimal `db:"water_amount"`
	Garbage     decimal.Decimal `db:"garbage_amount"`
	Garden      decimal.Decimal `db:"garden_amount"`
	Subtotal    decimal.Decimal `db:"subtotal"`
	Tax         decimal.Decimal `db:"tax_amount"`
	Total       decimal.Decimal `db:"total"`
	CreatedAt   time.Time       `db:"created_at"`
	CreatedBy   string          `db:"created_by"`
}

// Payment is a row of the payments table.
type Payment struct {
	PaymentID      string          `db:"payment_id"`
	AccountID      string          `db:"account_id"`
	Amount         decimal.Decimal `db:"amount"`
	PaymentDate    time.Time       `db:"payment_date"`
	Method         string          `db:"method"`
	ControllerID   *string         `db:"controller_id"`
	Reference      *string         `db:"reference"`
	CheckClosingID *string         `db:"check_closing_id"`
	CreatedAt      time.Time       `db:"created_at"`
	CreatedBy      string          `db:"created_by"`
}

// LedgerEntry is a row of the ledger_entries table.
type LedgerEntry struct {
	EntryID      string          `db:"entry_id"`
	AccountID    string          `db:"account_id"`
	Reason       string          `db:"reason"`
	Amount       decimal.Decimal `db:"amount"`
	BalanceAfter decimal.Decimal `db:"balance_after"`
	ReferenceID  *string         `db:"reference_id"`
	Memo         *string         `db:"memo"`
	CreatedAt    time.Time       `db:"created_at"`
	CreatedBy    string          `db:"created_by"`
}
