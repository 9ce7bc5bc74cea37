package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// CheckClosingRepositoryFacade defines persistence for check closings
type CheckClosingRepositoryFacade interface {
	// CreateClosing claims every unclaimed payment of closing.ControllerID dated closing.ClosingDate
	// and inserts the closing with those payments, in one transaction. It fails with
	// ErrDuplicateClosing when a PENDING or CONFIRMED closing already exists for the pair and with
	// ErrValidation when there is nothing to claim.
	CreateClosing(ctx context.Context, closing domain.CheckClosing) (*domain.CheckClosing, error)

	// ConfirmClosing moves a PENDING closing to CONFIRMED. A closing in any other status fails with
	// ErrConflict.
	ConfirmClosing(ctx context.Context, closingID string, actor string, now time.Time) error

	// CancelClosing moves a PENDING closing to CANCELLED and releases its payments.
	CancelClosing(ctx context.Context, closingID string, reason string, actor string, now time.Time) error

	FindClosingByID(ctx context.Context, closingID string) (*domain.CheckClosing, error)

	// ListClosings returns closings for a controller (all controllers when empty) dated in [from, to].
	ListClosings(ctx context.Context, controllerID string, from, to time.Time) ([]domain.CheckClosing, error)
}
