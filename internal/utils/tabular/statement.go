package tabular

import (
	"strings"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// ParseStatement converts date,amount,description records into statement rows. A first record
// whose date and amount both fail to parse is treated as a header. Extra columns after the
// description are joined back into it. The first invalid row aborts the parse with an
// *apperrors.ImportError.
func ParseStatement(records [][]string, lines []int) ([]domain.StatementRow, error) {
	rows := make([]domain.StatementRow, 0, len(records))
	for i, rec := range records {
		line := i + 1
		if i < len(lines) {
			line = lines[i]
		}
		if i == 0 && looksLikeHeader(rec) {
			continue
		}
		if len(rec) < 3 {
			return nil, &apperrors.ImportError{Line: line, Column: "description", Value: strings.Join(rec, ","), Reason: "expected date, amount and description"}
		}
		date, err := ParseDate(rec[0])
		if err != nil {
			return nil, &apperrors.ImportError{Line: line, Column: "date", Value: rec[0], Reason: err.Error()}
		}
		amount, err := ParseAmount(rec[1])
		if err != nil {
			return nil, &apperrors.ImportError{Line: line, Column: "amount", Value: rec[1], Reason: err.Error()}
		}
		if amount.IsZero() {
			return nil, &apperrors.ImportError{Line: line, Column: "amount", Value: rec[1], Reason: "amount must not be zero"}
		}
		desc := strings.TrimSpace(strings.Join(rec[2:], ","))
		rows = append(rows, domain.StatementRow{Line: line, Date: date, Amount: amount, Description: desc})
	}
	if len(rows) == 0 {
		return nil, &apperrors.ImportError{Line: 1, Column: "date", Value: "", Reason: "statement has no rows"}
	}
	return rows, nil
}

func looksLikeHeader(rec []string) bool {
	if len(rec) < 2 {
		return true
	}
	_, dateErr := ParseDate(rec[0])
	_, amountErr := ParseAmount(rec[1])
	return dateErr != nil && amountErr != nil
}
