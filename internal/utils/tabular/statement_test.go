package tabular

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatement_WithHeaderAndCommaInDescription(t *testing.T) {
	data := []byte("date,amount,description\n2025-08-14,1000.00,\"Payment, acc 25080009\"\n\n15.08.2025,250,Ivanov Ivan\n")

	records, lines, err := ReadCSV(data)
	require.NoError(t, err)
	rows, err := ParseStatement(records, lines)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.True(t, decimal.RequireFromString("1000").Equal(rows[0].Amount))
	assert.Equal(t, "Payment, acc 25080009", rows[0].Description)
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC), rows[1].Date)
}

func TestParseStatement_SemicolonAndDecimalComma(t *testing.T) {
	records, lines, err := ReadCSV([]byte("2025-08-14;1 250,50;QR payment 25080010\n"))
	require.NoError(t, err)

	rows, err := ParseStatement(records, lines)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1250.5", rows[0].Amount.String())
}

func TestParseStatement_ReportsFirstBadRow(t *testing.T) {
	records, lines, err := ReadCSV([]byte("date,amount,description\n2025-08-14,10,ok\n2025-08-15,ten,bad\n2025-13-40,5,worse\n"))
	require.NoError(t, err)

	_, err = ParseStatement(records, lines)

	var importErr *apperrors.ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, 3, importErr.Line)
	assert.Equal(t, "amount", importErr.Column)
	assert.Equal(t, "ten", importErr.Value)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestParseStatement_Empty(t *testing.T) {
	_, err := ParseStatement(nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"1000.00":  "1000",
		"1,000.50": "1000.5",
		"1000,5":   "1000.5",
		" 42 ":     "42",
		"-15.20":   "-15.2",
		"1 500":    "1500",
	}
	for raw, want := range tests {
		got, err := ParseAmount(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got.String(), raw)
	}
	_, err := ParseAmount("abc")
	assert.Error(t, err)
}

func TestHeader(t *testing.T) {
	h := NewHeader([]string{"Name", " Household Size", "water-tariff-mode"})

	assert.Equal(t, []string{"status"}, h.Missing([]string{"name", "household_size", "water_tariff_mode", "status"}))
	assert.Equal(t, "3", h.Get([]string{"Ann", " 3 ", "BY_METER"}, "household_size"))
	assert.Equal(t, "", h.Get([]string{"Ann"}, "water_tariff_mode"))
}
