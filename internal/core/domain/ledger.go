package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryReason tells why an account balance moved.
type EntryReason string

const (
	ReasonAccrual    EntryReason = "ACCRUAL"
	ReasonPayment    EntryReason = "PAYMENT"
	ReasonPenalty    EntryReason = "PENALTY"
	ReasonAdjustment EntryReason = "ADJUSTMENT"
)

// LedgerEntry is one balance change, with the balance it produced.
type LedgerEntry struct {
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	Reason       EntryReason     `json:"reason"`
	Amount       decimal.Decimal `json:"amount"` // signed delta
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	ReferenceID  string          `json:"referenceID,omitempty"`
	Memo         string          `json:"memo,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	CreatedBy    string          `json:"createdBy"`
}

// BankMatch links a bank statement transaction to the payment created by the same posting.
type BankMatch struct {
	TransactionID string
	Status        MatchStatus
	MatchedAt     time.Time
	MatchedBy     string
}

// Posting is a request to move one account balance by Delta together with the record that
// explains the move. The record and the balance change are persisted atomically.
type Posting struct {
	EntryID     string
	AccountID   string
	Delta       decimal.Decimal
	Reason      EntryReason
	ReferenceID string
	Memo        string
	Actor       string
	At          time.Time

	Accrual   *Accrual
	Payment   *Payment
	Penalty   *Penalty
	CaseNote  *DebtCaseHistoryEntry
	BankMatch *BankMatch

	// ComputeDelta, when set, is called with the account as read under the row lock and
	// replaces Delta. It may update the attached records. Returning false withdraws the posting.
	ComputeDelta func(locked Account) (decimal.Decimal, bool)
}

// Validate checks that the attached record fits the reason.
func (p Posting) Validate() error {
	if p.EntryID == "" || p.AccountID == "" {
		return fmt.Errorf("posting needs an entry id and an account")
	}
	if p.Actor == "" {
		return fmt.Errorf("posting has no actor")
	}
	if p.Delta.IsZero() {
		return fmt.Errorf("posting delta must not be zero")
	}
	switch p.Reason {
	case ReasonAccrual:
		if p.Accrual == nil || !p.Delta.IsNegative() {
			return fmt.Errorf("accrual posting needs an accrual record and a negative delta")
		}
	case ReasonPayment:
		if p.Payment == nil || !p.Delta.IsPositive() {
			return fmt.Errorf("payment posting needs a payment record and a positive delta")
		}
	case ReasonPenalty:
		if p.Penalty == nil || p.CaseNote == nil || !p.Delta.IsNegative() {
			return fmt.Errorf("penalty posting needs a penalty, a case note and a negative delta")
		}
	case ReasonAdjustment:
		if p.Accrual != nil || p.Payment != nil || p.Penalty != nil {
			return fmt.Errorf("adjustment posting must not carry a record")
		}
	default:
		return fmt.Errorf("unknown posting reason %q", p.Reason)
	}
	if p.BankMatch != nil && p.Payment == nil {
		return fmt.Errorf("bank match requires a payment record")
	}
	return nil
}

// NextOverdueSince returns the overdue marker after a balance moves from before to after.
// The marker is set to the posting day when the balance turns negative, kept while it stays
// negative and cleared once it is back to zero or above.
func NextOverdueSince(before, after decimal.Decimal, current *time.Time, at time.Time) *time.Time {
	if !after.IsNegative() {
		return nil
	}
	if before.IsNegative() && current != nil {
		return current
	}
	day := DateOnly(at)
	return &day
}
