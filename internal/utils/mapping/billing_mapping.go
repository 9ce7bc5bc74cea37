package mapping

import (
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/models"
)

// ToModelMeterReading converts a domain MeterReading to a model MeterReading
func ToModelMeterReading(d domain.MeterReading) models.MeterReading {
	return models.MeterReading{
		ReadingID:      d.ReadingID,
		AccountID:      d.AccountID,
		ReadingDate:    d.ReadingDate,
		Value:          d.Value,
		ManualOverride: d.ManualOverride,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMeterReading converts a model MeterReading to a domain MeterReading
func ToDomainMeterReading(m models.MeterReading) domain.MeterReading {
	return domain.MeterReading{
		ReadingID:      m.ReadingID,
		AccountID:      m.AccountID,
		ReadingDate:    m.ReadingDate,
		Value:          m.Value,
		ManualOverride: m.ManualOverride,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAccrual converts a domain Accrual to a model Accrual
func ToModelAccrual(d domain.Accrual) models.Accrual {
	return models.Accrual{
		AccrualID:   d.AccrualID,
		AccountID:   d.AccountID,
		Period:      d.Period,
		TariffID:    d.TariffID,
		Consumption: d.Consumption,
		Water:       d.Water,
		Garbage:     d.Garbage,
		Garden:      d.Garden,
		Subtotal:    d.Subtotal,
		Tax:         d.Tax,
		Total:       d.Total,
		CreatedAt:   d.CreatedAt,
		CreatedBy:   d.CreatedBy,
	}
}

// ToDomainAccrual converts a model Accrual to a domain Accrual
func ToDomainAccrual(m models.Accrual) domain.Accrual {
	return domain.Accrual{
		AccrualID: m.AccrualID,
		AccountID: m.AccountID,
		Period:    m.Period,
		TariffID:  m.TariffID,
		AccrualBreakdown: domain.AccrualBreakdown{
			Consumption: m.Consumption,
			Water:       m.Water,
			Garbage:     m.Garbage,
			Garden:      m.Garden,
			Subtotal:    m.Subtotal,
			Tax:         m.Tax,
			Total:       m.Total,
		},
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:      d.PaymentID,
		AccountID:      d.AccountID,
		Amount:         d.Amount,
		PaymentDate:    d.PaymentDate,
		Method:         string(d.Method),
		ControllerID:   optional(d.ControllerID),
		Reference:      optional(d.Reference),
		CheckClosingID: d.CheckClosingID,
		CreatedAt:      d.CreatedAt,
		CreatedBy:      d.CreatedBy,
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:      m.PaymentID,
		AccountID:      m.AccountID,
		Amount:         m.Amount,
		PaymentDate:    m.PaymentDate,
		Method:         domain.PaymentMethod(m.Method),
		ControllerID:   deref(m.ControllerID),
		Reference:      deref(m.Reference),
		CheckClosingID: m.CheckClosingID,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:      d.EntryID,
		AccountID:    d.AccountID,
		Reason:       string(d.Reason),
		Amount:       d.Amount,
		BalanceAfter: d.BalanceAfter,
		ReferenceID:  optional(d.ReferenceID),
		Memo:         optional(d.Memo),
		CreatedAt:    d.CreatedAt,
		CreatedBy:    d.CreatedBy,
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:      m.EntryID,
		AccountID:    m.AccountID,
		Reason:       domain.EntryReason(m.Reason),
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		ReferenceID:  deref(m.ReferenceID),
		Memo:         deref(m.Memo),
		CreatedAt:    m.CreatedAt,
		CreatedBy:    m.CreatedBy,
	}
}
