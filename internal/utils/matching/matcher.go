// Package matching implements the best-effort auto-match heuristic between bank statement lines
// and recorded payments.
package matching

import (
	"sort"
	"strings"
	"unicode"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// Normalize lower-cases s, turns every run of non-alphanumeric runes into one space and trims.
func Normalize(s string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteRune(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// NameKeys returns the normalized substrings of a full name that count as a mention:
// the whole name, plus surname and first name when a patronymic is present.
func NameKeys(fullName string) []string {
	full := Normalize(fullName)
	if full == "" {
		return nil
	}
	keys := []string{full}
	tokens := strings.Fields(full)
	if len(tokens) >= 3 {
		keys = append(keys, tokens[0]+" "+tokens[1])
	}
	return keys
}

// Mentions reports whether a statement description identifies the account, either by its
// personal-account number or by its holder's name.
func Mentions(description string, account domain.Account) bool {
	desc := Normalize(description)
	if desc == "" {
		return false
	}
	if pa := Normalize(account.PersonalAccount); pa != "" && strings.Contains(desc, pa) {
		return true
	}
	padded := " " + desc + " "
	for _, key := range NameKeys(account.FullName) {
		if strings.Contains(padded, " "+key+" ") {
			return true
		}
	}
	return false
}

// Reconcile runs one auto-match pass. A transaction is matched when exactly one account has an
// open payment of exactly the same amount and is mentioned in the description. Each payment is
// consumed by at most one transaction. Transactions that are not UNMATCHED are ignored.
func Reconcile(txns []domain.BankStatementTransaction, openPayments []domain.Payment, accounts map[string]domain.Account) domain.ReconciliationResult {
	result := domain.ReconciliationResult{
		Matched:        []domain.AutoMatch{},
		Ambiguous:      []domain.AmbiguousTransaction{},
		StillUnmatched: []string{},
	}

	ordered := make([]domain.BankStatementTransaction, 0, len(txns))
	for _, t := range txns {
		if t.Status == domain.Unmatched {
			ordered = append(ordered, t)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].TxnDate.Equal(ordered[j].TxnDate) {
			return ordered[i].TxnDate.Before(ordered[j].TxnDate)
		}
		return ordered[i].LineNumber < ordered[j].LineNumber
	})

	payments := make([]domain.Payment, len(openPayments))
	copy(payments, openPayments)
	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].PaymentDate.Equal(payments[j].PaymentDate) {
			return payments[i].PaymentDate.Before(payments[j].PaymentDate)
		}
		return payments[i].PaymentID < payments[j].PaymentID
	})
	consumed := make(map[string]bool, len(payments))

	for _, txn := range ordered {
		candidates := candidatesFor(txn, payments, consumed, accounts)
		switch len(candidates) {
		case 0:
			result.StillUnmatched = append(result.StillUnmatched, txn.TransactionID)
		case 1:
			consumed[candidates[0].PaymentID] = true
			result.Matched = append(result.Matched, domain.AutoMatch{TransactionID: txn.TransactionID, Candidate: candidates[0]})
		default:
			result.Ambiguous = append(result.Ambiguous, domain.AmbiguousTransaction{TransactionID: txn.TransactionID, Candidates: candidates})
			result.StillUnmatched = append(result.StillUnmatched, txn.TransactionID)
		}
	}
	return result
}

// candidatesFor returns one candidate per distinct account, using that account's earliest
// unconsumed payment of the same amount.
func candidatesFor(txn domain.BankStatementTransaction, payments []domain.Payment, consumed map[string]bool, accounts map[string]domain.Account) []domain.MatchCandidate {
	seen := make(map[string]bool)
	var out []domain.MatchCandidate
	for _, p := range payments {
		if consumed[p.PaymentID] || seen[p.AccountID] || !p.Amount.Equal(txn.Amount) {
			continue
		}
		acc, ok := accounts[p.AccountID]
		if !ok || !Mentions(txn.Description, acc) {
			continue
		}
		seen[p.AccountID] = true
		out = append(out, domain.MatchCandidate{
			AccountID:       acc.AccountID,
			PersonalAccount: acc.PersonalAccount,
			FullName:        acc.FullName,
			PaymentID:       p.PaymentID,
		})
	}
	return out
}
