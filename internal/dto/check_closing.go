package dto

import "github.com/SscSPs/water_billing_ledger/internal/core/domain"

// CreateCheckClosingRequest closes a controller's collections for one day.
type CreateCheckClosingRequest struct {
	ClosingDate  string `json:"closingDate" binding:"required,datetime=2006-01-02"`
	ControllerID string `json:"controllerID" binding:"required,max=64"`
	Notes        string `json:"notes" binding:"max=1000"`
}

// CancelCheckClosingRequest carries the mandatory cancel reason.
type CancelCheckClosingRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// ListCheckClosingsParams defines query parameters for listing check closings.
type ListCheckClosingsParams struct {
	ControllerID string `form:"controllerID"`
	From         string `form:"from" binding:"required,datetime=2006-01-02"`
	To           string `form:"to" binding:"required,datetime=2006-01-02"`
}

// ListCheckClosingsResponse wraps the list of check closings.
type ListCheckClosingsResponse struct {
	Closings []domain.CheckClosing `json:"closings"`
}
