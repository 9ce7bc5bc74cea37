// Package sheets reads bank statement rows from a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"os"

	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Reader implements ports.SheetReader for one spreadsheet using a service account.
type Reader struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewReader authenticates with the service account key in credentialsFile.
func NewReader(ctx context.Context, credentialsFile, spreadsheetID string) (*Reader, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	service, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Reader{service: service, spreadsheetID: spreadsheetID}, nil
}

var _ ports.SheetReader = (*Reader)(nil)

// ReadRange returns the formatted cell values of readRange. Short rows are kept as they are.
func (r *Reader) ReadRange(ctx context.Context, readRange string) ([][]string, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", readRange, err)
	}
	return toRows(resp.Values), nil
}

func toRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		rows[i] = cells
	}
	return rows
}
