// Package tabular reads delimited text imports (bank statements and account lists) and parses
// the primitive values they carry.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ReadCSV decodes data as delimited text. The delimiter is sniffed from the first line
// (semicolon, tab or comma). Blank lines are dropped; the returned line numbers are 1-based
// positions in the original file.
func ReadCSV(data []byte) ([][]string, []int, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var records [][]string
	var lines []int
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, nil, &apperrors.ImportError{Line: parseErr.Line, Column: "", Value: "", Reason: parseErr.Err.Error()}
			}
			return nil, nil, fmt.Errorf("failed to read delimited text: %w", err)
		}
		if isBlank(rec) {
			continue
		}
		line, _ := r.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	return records, lines, nil
}

func sniffDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	best, bestCount := ',', bytes.Count(first, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if c := bytes.Count(first, []byte(string(d))); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Header maps normalized column names to their index.
type Header map[string]int

// NewHeader builds a Header from a header row. Names are lower-cased and spaces become
// underscores, so "Household Size" is found as "household_size".
func NewHeader(row []string) Header {
	h := make(Header, len(row))
	for i, name := range row {
		h[NormalizeColumn(name)] = i
	}
	return h
}

// NormalizeColumn canonicalizes a column name.
func NormalizeColumn(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	return strings.Join(strings.Fields(n), "_")
}

// Missing returns the required columns absent from the header, in the given order.
func (h Header) Missing(required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Get returns the trimmed cell for col, or "" when the column or cell is absent.
func (h Header) Get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

var dateLayouts = []string{"2006-01-02", "02.01.2006", "02/01/2006", "2006/01/02", time.RFC3339}

// ParseDate accepts ISO dates, dd.mm.yyyy, dd/mm/yyyy and RFC 3339 timestamps.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// ParseAmount accepts "1000.50", "1 000,50", "1,000.50" and "1000,5".
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer(" ", "", "\u00a0", "", "'", "").Replace(s)
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unrecognized amount %q", raw)
	}
	return d, nil
}
