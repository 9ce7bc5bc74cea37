package mapping

import (
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/models"
)

// ToModelDebtCase converts a domain DebtCase to a model DebtCase
func ToModelDebtCase(d domain.DebtCase) models.DebtCase {
	return models.DebtCase{
		CaseID:      d.CaseID,
		AccountID:   d.AccountID,
		DebtAmount:  d.DebtAmount,
		DebtAgeDays: d.DebtAgeDays,
		Status:      string(d.Status),
		OpenedAt:    d.OpenedAt,
		ClosedAt:    d.ClosedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDebtCase converts a model DebtCase to a domain DebtCase, without history.
func ToDomainDebtCase(m models.DebtCase) domain.DebtCase {
	return domain.DebtCase{
		CaseID:      m.CaseID,
		AccountID:   m.AccountID,
		DebtAmount:  m.DebtAmount,
		DebtAgeDays: m.DebtAgeDays,
		Status:      domain.DebtCaseStatus(m.Status),
		OpenedAt:    m.OpenedAt,
		ClosedAt:    m.ClosedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelDebtCaseHistory converts a domain history entry to a model history row
func ToModelDebtCaseHistory(d domain.DebtCaseHistoryEntry) models.DebtCaseHistory {
	return models.DebtCaseHistory{
		EntryID:    d.EntryID,
		CaseID:     d.CaseID,
		At:         d.At,
		Actor:      d.Actor,
		FromStatus: string(d.FromStatus),
		ToStatus:   string(d.ToStatus),
		Action:     d.Action,
	}
}

// ToDomainDebtCaseHistory converts a model history row to a domain history entry
func ToDomainDebtCaseHistory(m models.DebtCaseHistory) domain.DebtCaseHistoryEntry {
	return domain.DebtCaseHistoryEntry{
		EntryID:    m.EntryID,
		CaseID:     m.CaseID,
		At:         m.At,
		Actor:      m.Actor,
		FromStatus: domain.DebtCaseStatus(m.FromStatus),
		ToStatus:   domain.DebtCaseStatus(m.ToStatus),
		Action:     m.Action,
	}
}

// ToModelPenalty converts a domain Penalty to a model Penalty
func ToModelPenalty(d domain.Penalty) models.Penalty {
	return models.Penalty{
		PenaltyID:   d.PenaltyID,
		AccountID:   d.AccountID,
		CaseID:      d.CaseID,
		PenaltyDate: d.PenaltyDate,
		BaseDebt:    d.BaseDebt,
		DaysOver:    d.DaysOver,
		RatePercent: d.RatePercent,
		Amount:      d.Amount,
		CreatedAt:   d.CreatedAt,
		CreatedBy:   d.CreatedBy,
	}
}

// ToDomainPenalty converts a model Penalty to a domain Penalty
func ToDomainPenalty(m models.Penalty) domain.Penalty {
	return domain.Penalty{
		PenaltyID:   m.PenaltyID,
		AccountID:   m.AccountID,
		CaseID:      m.CaseID,
		PenaltyDate: m.PenaltyDate,
		BaseDebt:    m.BaseDebt,
		DaysOver:    m.DaysOver,
		RatePercent: m.RatePercent,
		Amount:      m.Amount,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}
