package mapping

import (
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/models"
)

// ToModelBankStatement converts a domain BankStatement to a model BankStatement
func ToModelBankStatement(d domain.BankStatement) models.BankStatement {
	return models.BankStatement{
		StatementID: d.StatementID,
		SourceBank:  d.SourceBank,
		FileName:    d.FileName,
		Fingerprint: d.Fingerprint,
		RowCount:    d.RowCount,
		ArchiveKey:  optional(d.ArchiveKey),
		ImportedAt:  d.ImportedAt,
		ImportedBy:  d.ImportedBy,
	}
}

// ToDomainBankStatement converts a model BankStatement to a domain BankStatement
func ToDomainBankStatement(m models.BankStatement) domain.BankStatement {
	return domain.BankStatement{
		StatementID: m.StatementID,
		SourceBank:  m.SourceBank,
		FileName:    m.FileName,
		Fingerprint: m.Fingerprint,
		RowCount:    m.RowCount,
		ArchiveKey:  deref(m.ArchiveKey),
		ImportedAt:  m.ImportedAt,
		ImportedBy:  m.ImportedBy,
	}
}

// ToModelBankTransaction converts a domain statement line to a model row
func ToModelBankTransaction(d domain.BankStatementTransaction) models.BankTransaction {
	return models.BankTransaction{
		TransactionID: d.TransactionID,
		StatementID:   d.StatementID,
		LineNumber:    d.LineNumber,
		TxnDate:       d.TxnDate,
		Amount:        d.Amount,
		Description:   d.Description,
		SourceBank:    d.SourceBank,
		Status:        string(d.Status),
		AccountID:     d.AccountID,
		PaymentID:     d.PaymentID,
		MatchedAt:     d.MatchedAt,
		MatchedBy:     d.MatchedBy,
	}
}

// ToDomainBankTransaction converts a model row to a domain statement line
func ToDomainBankTransaction(m models.BankTransaction) domain.BankStatementTransaction {
	return domain.BankStatementTransaction{
		TransactionID: m.TransactionID,
		StatementID:   m.StatementID,
		LineNumber:    m.LineNumber,
		TxnDate:       m.TxnDate,
		Amount:        m.Amount,
		Description:   m.Description,
		SourceBank:    m.SourceBank,
		Status:        domain.MatchStatus(m.Status),
		AccountID:     m.AccountID,
		PaymentID:     m.PaymentID,
		MatchedAt:     m.MatchedAt,
		MatchedBy:     m.MatchedBy,
	}
}

// ToModelCheckClosing converts a domain CheckClosing to a model CheckClosing
func ToModelCheckClosing(d domain.CheckClosing) models.CheckClosing {
	return models.CheckClosing{
		ClosingID:    d.ClosingID,
		ClosingDate:  d.ClosingDate,
		ControllerID: d.ControllerID,
		PaymentIDs:   d.PaymentIDs,
		TotalAmount:  d.TotalAmount,
		Status:       string(d.Status),
		Notes:        optional(d.Notes),
		CancelReason: optional(d.CancelReason),
		ClosedBy:     optional(d.ClosedBy),
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCheckClosing converts a model CheckClosing to a domain CheckClosing
func ToDomainCheckClosing(m models.CheckClosing) domain.CheckClosing {
	return domain.CheckClosing{
		ClosingID:    m.ClosingID,
		ClosingDate:  m.ClosingDate,
		ControllerID: m.ControllerID,
		PaymentIDs:   m.PaymentIDs,
		TotalAmount:  m.TotalAmount,
		Status:       domain.CheckClosingStatus(m.Status),
		Notes:        deref(m.Notes),
		CancelReason: deref(m.CancelReason),
		ClosedBy:     deref(m.ClosedBy),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
