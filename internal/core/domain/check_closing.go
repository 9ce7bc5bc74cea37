package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckClosingStatus is the state of a check closing.
type CheckClosingStatus string

const (
	ClosingPending   CheckClosingStatus = "PENDING"
	ClosingConfirmed CheckClosingStatus = "CONFIRMED"
	ClosingCancelled CheckClosingStatus = "CANCELLED"
)

func (s CheckClosingStatus) IsValid() bool {
	return s == ClosingPending || s == ClosingConfirmed || s == ClosingCancelled
}

// CanTransitionTo reports whether target is reachable. Only PENDING has exits.
func (s CheckClosingStatus) CanTransitionTo(target CheckClosingStatus) bool {
	return s == ClosingPending && (target == ClosingConfirmed || target == ClosingCancelled)
}

// CheckClosing is a controller's day of collected payments settled as one unit.
type CheckClosing struct {
	ClosingID    string             `json:"closingID"`
	ClosingDate  time.Time          `json:"closingDate"`
	ControllerID string             `json:"controllerID"`
	PaymentIDs   []string           `json:"paymentIDs"`
	TotalAmount  decimal.Decimal    `json:"totalAmount"`
	Status       CheckClosingStatus `json:"status"`
	Notes        string             `json:"notes,omitempty"`
	CancelReason string             `json:"cancelReason,omitempty"`
	ClosedBy     string             `json:"closedBy,omitempty"`
	AuditFields
}
