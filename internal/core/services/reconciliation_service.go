package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/utils/matching"
	"github.com/SscSPs/water_billing_ledger/internal/utils/tabular"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

type reconciliationService struct {
	BaseService
	statementRepo portsrepo.BankStatementRepositoryFacade
	paymentRepo   portsrepo.PaymentRepositoryFacade
	accountRepo   portsrepo.AccountReader
	ledger        portssvc.LedgerWriterSvc
	archive       ports.StatementArchive
	sheets        ports.SheetReader
}

// ReconciliationOption configures optional statement sources and sinks.
type ReconciliationOption func(*reconciliationService)

// WithStatementArchive stores every imported raw file.
func WithStatementArchive(archive ports.StatementArchive) ReconciliationOption {
	return func(s *reconciliationService) {
		s.archive = archive
	}
}

// WithSheetReader enables spreadsheet imports.
func WithSheetReader(sheets ports.SheetReader) ReconciliationOption {
	return func(s *reconciliationService) {
		s.sheets = sheets
	}
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(
	statementRepo portsrepo.BankStatementRepositoryFacade,
	paymentRepo portsrepo.PaymentRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	ledger portssvc.LedgerWriterSvc,
	base []ServiceOption,
	options ...ReconciliationOption,
) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{
		BaseService:   newBaseService(base),
		statementRepo: statementRepo,
		paymentRepo:   paymentRepo,
		accountRepo:   accountRepo,
		ledger:        ledger,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// Fingerprint identifies a statement file by content.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *reconciliationService) ImportStatement(ctx context.Context, sourceBank string, fileName string, data []byte, actor string) (*domain.BankStatement, []domain.BankStatementTransaction, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, fmt.Errorf("%w: statement file is empty", apperrors.ErrValidation)
	}
	records, lines, err := tabular.ReadCSV(data)
	if err != nil {
		return nil, nil, err
	}
	return s.importRecords(ctx, sourceBank, fileName, "text/csv", data, records, lines, actor)
}

func (s *reconciliationService) ImportStatementFromSheet(ctx context.Context, sourceBank string, readRange string, actor string) (*domain.BankStatement, []domain.BankStatementTransaction, error) {
	if s.sheets == nil {
		return nil, nil, fmt.Errorf("%w: spreadsheet import is not configured", apperrors.ErrValidation)
	}
	values, err := s.sheets.ReadRange(ctx, readRange)
	if err != nil {
		s.LogError(ctx, err, "Failed to read statement sheet", slog.String("range", readRange))
		return nil, nil, err
	}

	records := make([][]string, 0, len(values))
	lines := make([]int, 0, len(values))
	for i, row := range values {
		if len(strings.Join(row, "")) == 0 {
			continue
		}
		records = append(records, row)
		lines = append(lines, i+1)
	}

	// The CSV rendering of the rows is what gets fingerprinted and archived.
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, nil, fmt.Errorf("failed to render sheet rows: %w", err)
	}
	return s.importRecords(ctx, sourceBank, readRange, "text/csv", buf.Bytes(), records, lines, actor)
}

func (s *reconciliationService) importRecords(ctx context.Context, sourceBank, fileName, contentType string, raw []byte, records [][]string, lines []int, actor string) (*domain.BankStatement, []domain.BankStatementTransaction, error) {
	sourceBank = strings.TrimSpace(sourceBank)
	if sourceBank == "" {
		return nil, nil, fmt.Errorf("%w: source bank is required", apperrors.ErrValidation)
	}
	rows, err := tabular.ParseStatement(records, lines)
	if err != nil {
		s.LogWarn(ctx, "Rejected bank statement", slog.String("file", fileName), slog.String("error", err.Error()))
		return nil, nil, err
	}

	now := s.Now()
	statement := domain.BankStatement{
		StatementID: uuid.NewString(),
		SourceBank:  sourceBank,
		FileName:    fileName,
		Fingerprint: Fingerprint(raw),
		RowCount:    len(rows),
		ImportedAt:  now,
		ImportedBy:  actor,
	}

	if s.archive != nil {
		// Keyed by fingerprint, so re-uploading the same file overwrites the same object.
		key := path.Join(strings.ToLower(sourceBank), now.Format("2006/01"), statement.Fingerprint+".csv")
		stored, err := s.archive.Store(ctx, key, contentType, raw)
		if err != nil {
			s.LogError(ctx, err, "Failed to archive bank statement", slog.String("file", fileName))
			return nil, nil, err
		}
		statement.ArchiveKey = stored
	}

	txns := make([]domain.BankStatementTransaction, len(rows))
	for i, row := range rows {
		txns[i] = domain.BankStatementTransaction{
			TransactionID: uuid.NewString(),
			StatementID:   statement.StatementID,
			LineNumber:    row.Line,
			TxnDate:       row.Date,
			Amount:        row.Amount,
			Description:   row.Description,
			SourceBank:    sourceBank,
			Status:        domain.Unmatched,
		}
	}

	if err := s.statementRepo.SaveStatement(ctx, statement, txns); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, "Bank statement already imported", slog.String("fingerprint", statement.Fingerprint))
		} else {
			s.LogError(ctx, err, "Failed to save bank statement", slog.String("file", fileName))
		}
		return nil, nil, err
	}

	s.LogInfo(ctx, "Bank statement imported",
		slog.String("statement_id", statement.StatementID),
		slog.String("source_bank", sourceBank),
		slog.Int("rows", statement.RowCount))
	s.Publish(ctx, domain.EventStatementImported, actor, statement.StatementID, map[string]any{
		"sourceBank": sourceBank,
		"fileName":   fileName,
		"rows":       statement.RowCount,
	})
	return &statement, txns, nil
}

func (s *reconciliationService) Reconcile(ctx context.Context, actor string) (*domain.ReconciliationResult, error) {
	txns, err := s.statementRepo.ListTransactions(ctx, domain.Unmatched)
	if err != nil {
		return nil, err
	}
	openPayments, err := s.paymentRepo.ListOpenPayments(ctx)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(openPayments))
	seen := make(map[string]bool, len(openPayments))
	for _, p := range openPayments {
		if !seen[p.AccountID] {
			seen[p.AccountID] = true
			accountIDs = append(accountIDs, p.AccountID)
		}
	}
	accounts := map[string]domain.Account{}
	if len(accountIDs) > 0 {
		accounts, err = s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
		if err != nil {
			return nil, err
		}
	}

	proposed := matching.Reconcile(txns, openPayments, accounts)
	result := &domain.ReconciliationResult{
		Matched:        make([]domain.AutoMatch, 0, len(proposed.Matched)),
		Ambiguous:      proposed.Ambiguous,
		StillUnmatched: proposed.StillUnmatched,
	}
	now := s.Now()
	for _, m := range proposed.Matched {
		match := domain.BankMatch{TransactionID: m.TransactionID, Status: domain.Matched, MatchedAt: now, MatchedBy: actor}
		if err := s.statementRepo.LinkTransaction(ctx, match, m.Candidate.AccountID, m.Candidate.PaymentID); err != nil {
			if !errors.Is(err, apperrors.ErrConflict) {
				return nil, err
			}
			s.LogWarn(ctx, "Auto-match lost a race, leaving transaction unmatched",
				slog.String("transaction_id", m.TransactionID),
				slog.String("payment_id", m.Candidate.PaymentID))
			result.StillUnmatched = append(result.StillUnmatched, m.TransactionID)
			continue
		}
		result.Matched = append(result.Matched, m)
	}

	s.LogInfo(ctx, "Reconciliation pass finished",
		slog.Int("matched", len(result.Matched)),
		slog.Int("ambiguous", len(result.Ambiguous)),
		slog.Int("unmatched", len(result.StillUnmatched)))
	return result, nil
}

func (s *reconciliationService) ManualMatch(ctx context.Context, transactionID string, accountID string, paymentID *string, actor string) (*domain.BankStatementTransaction, error) {
	txn, err := s.statementRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.Status.CanAdvanceTo(domain.Manual) {
		return nil, fmt.Errorf("%w: transaction %s is already %s", apperrors.ErrConflict, transactionID, txn.Status)
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	match := domain.BankMatch{TransactionID: txn.TransactionID, Status: domain.Manual, MatchedAt: now, MatchedBy: actor}

	if paymentID != nil && *paymentID != "" {
		payment, err := s.paymentRepo.FindPaymentByID(ctx, *paymentID)
		if err != nil {
			return nil, err
		}
		if payment.AccountID != account.AccountID {
			return nil, fmt.Errorf("%w: payment %s belongs to another account", apperrors.ErrValidation, payment.PaymentID)
		}
		if err := s.statementRepo.LinkTransaction(ctx, match, account.AccountID, payment.PaymentID); err != nil {
			return nil, err
		}
	} else {
		if !txn.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: only incoming transfers can be booked as payments", apperrors.ErrValidation)
		}
		payment := domain.Payment{
			PaymentID:   uuid.NewString(),
			AccountID:   account.AccountID,
			Amount:      txn.Amount,
			PaymentDate: txn.TxnDate,
			Method:      domain.PaymentBank,
			Reference:   txn.SourceBank + " line " + fmt.Sprint(txn.LineNumber),
			CreatedAt:   now,
			CreatedBy:   actor,
		}
		_, err := s.ledger.ApplyDelta(ctx, domain.Posting{
			AccountID:   account.AccountID,
			Delta:       payment.Amount,
			Reason:      domain.ReasonPayment,
			ReferenceID: payment.PaymentID,
			Memo:        "bank transfer",
			Actor:       actor,
			At:          now,
			Payment:     &payment,
			BankMatch:   &match,
		})
		if err != nil {
			return nil, err
		}
	}

	s.LogInfo(ctx, "Bank transaction matched manually",
		slog.String("transaction_id", transactionID),
		slog.String("account_id", account.AccountID),
		slog.String("actor", actor))
	return s.statementRepo.FindTransactionByID(ctx, transactionID)
}

func (s *reconciliationService) ListTransactions(ctx context.Context, status domain.MatchStatus) ([]domain.BankStatementTransaction, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown match status %q", apperrors.ErrValidation, status)
	}
	return s.statementRepo.ListTransactions(ctx, status)
}
