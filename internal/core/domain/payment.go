package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the money was collected.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentBank         PaymentMethod = "BANK"
	PaymentCard         PaymentMethod = "CARD"
	PaymentQR           PaymentMethod = "QR"
	PaymentCashRegister PaymentMethod = "CASH_REGISTER"
	PaymentSystem       PaymentMethod = "SYSTEM"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentBank, PaymentCard, PaymentQR, PaymentCashRegister, PaymentSystem:
		return true
	}
	return false
}

// Payment credits an account. Payments are append-only; once the check closing that covers a
// payment is confirmed the payment is frozen for good.
type Payment struct {
	PaymentID      string          `json:"paymentID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentDate    time.Time       `json:"paymentDate"`
	Method         PaymentMethod   `json:"method"`
	ControllerID   string          `json:"controllerID,omitempty"`
	Reference      string          `json:"reference,omitempty"`
	CheckClosingID *string         `json:"checkClosingID,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}
