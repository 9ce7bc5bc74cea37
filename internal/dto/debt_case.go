package dto

import "github.com/SscSPs/water_billing_ledger/internal/core/domain"

// TransitionDebtCaseRequest moves a debt case to another status.
type TransitionDebtCaseRequest struct {
	TargetStatus string `json:"targetStatus" binding:"required,oneof=WARNING_SENT PRE_LEGAL LEGAL_ACTION CLOSED"`
	Action       string `json:"action" binding:"required,max=500"`
}

// AddDebtCaseNoteRequest appends a note to a debt case history.
type AddDebtCaseNoteRequest struct {
	Action string `json:"action" binding:"required,max=500"`
}

// RunDebtSweepRequest runs the daily sweep, for today when Day is empty.
type RunDebtSweepRequest struct {
	Day string `json:"day" binding:"omitempty,datetime=2006-01-02"`
}

// ListDebtCasesParams defines query parameters for listing debt cases.
type ListDebtCasesParams struct {
	Status string `form:"status" binding:"omitempty,oneof=MONITORING WARNING_SENT PRE_LEGAL LEGAL_ACTION CLOSED"`
}

// ListDebtCasesResponse wraps the list of debt cases.
type ListDebtCasesResponse struct {
	Cases []domain.DebtCase `json:"cases"`
}

// GetDebtCaseResponse is a case with its history and penalties.
type GetDebtCaseResponse struct {
	Case      domain.DebtCase  `json:"case"`
	Penalties []domain.Penalty `json:"penalties"`
}
