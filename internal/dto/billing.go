package dto

import (
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordReadingRequest defines a meter reading submission.
type RecordReadingRequest struct {
	AccountID      string          `json:"accountID" binding:"required"`
	ReadingDate    string          `json:"readingDate" binding:"required,datetime=2006-01-02"`
	Value          decimal.Decimal `json:"value"`
	ManualOverride bool            `json:"manualOverride"`
}

// ListReadingsResponse wraps the readings of an account.
type ListReadingsResponse struct {
	Readings []domain.MeterReading `json:"readings"`
}

// RunAccrualsRequest starts the monthly accrual run for a period.
type RunAccrualsRequest struct {
	Period string `json:"period" binding:"required,datetime=2006-01"`
}

// AccrualRunResponse summarizes an accrual run.
type AccrualRunResponse struct {
	domain.AccrualRunResult
	Created      int             `json:"created"`
	TotalCharged decimal.Decimal `json:"totalCharged"`
}

// ToAccrualRunResponse converts a run result to its response DTO.
func ToAccrualRunResponse(r *domain.AccrualRunResult) AccrualRunResponse {
	return AccrualRunResponse{
		AccrualRunResult: *r,
		Created:          len(r.Accruals),
		TotalCharged:     r.TotalCharged(),
	}
}

// ListAccrualsParams defines query parameters for listing accruals.
type ListAccrualsParams struct {
	AccountID string `form:"accountID"`
	Period    string `form:"period" binding:"omitempty,datetime=2006-01"`
}

// ListAccrualsResponse wraps the list of accruals.
type ListAccrualsResponse struct {
	Accruals []domain.Accrual `json:"accruals"`
}

// RecordPaymentRequest defines a payment collected from an abonent.
type RecordPaymentRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentDate  string          `json:"paymentDate" binding:"required,datetime=2006-01-02"`
	Method       string          `json:"method" binding:"required,oneof=CASH BANK CARD QR CASH_REGISTER SYSTEM"`
	ControllerID string          `json:"controllerID" binding:"max=64"`
	Reference    string          `json:"reference" binding:"max=255"`
}

// ListPaymentsParams defines query parameters for listing payments.
type ListPaymentsParams struct {
	AccountID    string `form:"accountID"`
	ControllerID string `form:"controllerID"`
	From         string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To           string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// ListPaymentsResponse wraps the list of payments.
type ListPaymentsResponse struct {
	Payments []domain.Payment `json:"payments"`
}
