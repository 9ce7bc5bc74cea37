package services

import (
	"context"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// CheckClosingSvcFacade coordinates the daily settlement of a controller's payments.
type CheckClosingSvcFacade interface {
	// CreateCheckClosing claims every unclaimed payment of the controller on date.
	CreateCheckClosing(ctx context.Context, date time.Time, controllerID string, notes string, actor string) (*domain.CheckClosing, error)
	ConfirmCheckClosing(ctx context.Context, closingID string, actor string) (*domain.CheckClosing, error)
	// CancelCheckClosing requires a reason and releases the payments.
	CancelCheckClosing(ctx context.Context, closingID string, reason string, actor string) (*domain.CheckClosing, error)
	GetCheckClosing(ctx context.Context, closingID string) (*domain.CheckClosing, error)
	ListCheckClosings(ctx context.Context, controllerID string, from, to time.Time) ([]domain.CheckClosing, error)
}
