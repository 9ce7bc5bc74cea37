package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) multipartBody(fields map[string]string, fileName string, content []byte) ([]byte, string) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		suite.Require().NoError(writer.WriteField(k, v))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		suite.Require().NoError(err)
		_, err = part.Write(content)
		suite.Require().NoError(err)
	}
	suite.Require().NoError(writer.Close())
	return body.Bytes(), writer.FormDataContentType()
}

// --- Accruals ---

func (suite *HandlerTestSuite) TestRunAccruals_ReturnsSummary() {
	period := domain.BillingPeriod{Year: 2025, Month: time.February}
	result := &domain.AccrualRunResult{
		Period: "2025-02",
		Accruals: []domain.Accrual{
			{AccrualID: "a1", AccountID: "acc-1", AccrualBreakdown: domain.AccrualBreakdown{Total: decimal.RequireFromString("163.52")}},
			{AccrualID: "a2", AccountID: "acc-2", AccrualBreakdown: domain.AccrualBreakdown{Total: decimal.RequireFromString("84")}},
		},
		Skipped:  []string{"acc-3"},
		Failures: []domain.AccountFailure{{AccountID: "acc-4", Reason: "missing reading"}},
	}
	suite.mockAccrualService.On("RunMonthlyAccruals", mock.Anything, period, suite.userID).Return(result, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/accruals/run", dto.RunAccrualsRequest{Period: "2025-02"})

	suite.Equal(http.StatusOK, w.Code)
	var resp map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(float64(2), resp["created"])
	suite.Equal("247.52", resp["totalCharged"])
	suite.Len(resp["skipped"], 1)
	suite.Len(resp["failures"], 1)
	suite.mockAccrualService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestRunAccruals_BadPeriod() {
	w := suite.doJSON(http.MethodPost, "/api/v1/accruals/run", dto.RunAccrualsRequest{Period: "02/2025"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccrualService.AssertNotCalled(suite.T(), "RunMonthlyAccruals", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestRunAccruals_NoActiveTariff() {
	suite.mockAccrualService.On("RunMonthlyAccruals", mock.Anything, mock.Anything, suite.userID).
		Return(nil, apperrors.ErrMissingTariff).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/accruals/run", dto.RunAccrualsRequest{Period: "2025-02"})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlerTestSuite) TestRunAccruals_AlreadyRunning() {
	suite.mockAccrualService.On("RunMonthlyAccruals", mock.Anything, mock.Anything, suite.userID).
		Return(nil, errors.Join(errors.New("lock accruals:2025-02"), apperrors.ErrConflict)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/accruals/run", dto.RunAccrualsRequest{Period: "2025-02"})

	suite.Equal(http.StatusConflict, w.Code)
}

// --- Payments ---

func (suite *HandlerTestSuite) TestRecordPayment_Created() {
	payment := &domain.Payment{PaymentID: "pay-1", AccountID: "acc-1", Amount: decimal.RequireFromString("150.50"), Method: domain.PaymentCash}
	suite.mockPaymentService.On("RecordPayment", mock.Anything, mock.MatchedBy(func(req dto.RecordPaymentRequest) bool {
		return req.AccountID == "acc-1" && req.Amount.Equal(decimal.RequireFromString("150.50")) && req.Method == "CASH"
	}), suite.userID).Return(payment, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/payments", map[string]any{
		"accountID":   "acc-1",
		"amount":      "150.50",
		"paymentDate": "2025-03-10",
		"method":      "CASH",
	})

	suite.Equal(http.StatusCreated, w.Code)
	suite.mockPaymentService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestRecordPayment_UnknownMethod() {
	w := suite.doJSON(http.MethodPost, "/api/v1/payments", map[string]any{
		"accountID":   "acc-1",
		"amount":      "10",
		"paymentDate": "2025-03-10",
		"method":      "CHEQUE",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPaymentService.AssertNotCalled(suite.T(), "RecordPayment", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestRecordPayment_AccountMissing() {
	suite.mockPaymentService.On("RecordPayment", mock.Anything, mock.AnythingOfType("dto.RecordPaymentRequest"), suite.userID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/payments", map[string]any{
		"accountID":   "acc-404",
		"amount":      "10",
		"paymentDate": "2025-03-10",
		"method":      "QR",
	})

	suite.Equal(http.StatusNotFound, w.Code)
}

// --- Statements and reconciliation ---

func (suite *HandlerTestSuite) TestImportStatement_Created() {
	content := []byte("2025-03-05,500,25030001\n")
	body, contentType := suite.multipartBody(map[string]string{"sourceBank": "Kaspi"}, "march.csv", content)
	statement := &domain.BankStatement{StatementID: "st-1", SourceBank: "Kaspi", FileName: "march.csv", RowCount: 1}
	txns := []domain.BankStatementTransaction{{TransactionID: "t1", LineNumber: 1, Status: domain.Unmatched}}
	suite.mockReconService.On("ImportStatement", mock.Anything, "Kaspi", "march.csv", content, suite.userID).
		Return(statement, txns, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/statements", body, contentType)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.ImportStatementResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("st-1", resp.Statement.StatementID)
	suite.Len(resp.Transactions, 1)
	suite.mockReconService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestImportStatement_AlreadyImported() {
	content := []byte("2025-03-05,500,25030001\n")
	body, contentType := suite.multipartBody(map[string]string{"sourceBank": "Kaspi"}, "march.csv", content)
	suite.mockReconService.On("ImportStatement", mock.Anything, "Kaspi", "march.csv", content, suite.userID).
		Return(nil, nil, apperrors.ErrDuplicate).Once()

	w := suite.do(http.MethodPost, "/api/v1/statements", body, contentType)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestImportStatement_RequiresSourceBank() {
	body, contentType := suite.multipartBody(nil, "march.csv", []byte("2025-03-05,500,x\n"))

	w := suite.do(http.MethodPost, "/api/v1/statements", body, contentType)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReconService.AssertNotCalled(suite.T(), "ImportStatement", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestReconcile_ReturnsResult() {
	result := &domain.ReconciliationResult{
		Matched:        []domain.AutoMatch{{TransactionID: "t1", Candidate: domain.MatchCandidate{AccountID: "acc-1", PaymentID: "p1"}}},
		Ambiguous:      []domain.AmbiguousTransaction{},
		StillUnmatched: []string{"t2"},
	}
	suite.mockReconService.On("Reconcile", mock.Anything, suite.userID).Return(result, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/bank-transactions/reconcile", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.ReconciliationResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal([]string{"t2"}, resp.StillUnmatched)
}

func (suite *HandlerTestSuite) TestReconcile_HidesInternalFailure() {
	suite.mockReconService.On("Reconcile", mock.Anything, suite.userID).
		Return(nil, apperrors.NewAppError(http.StatusServiceUnavailable, "database unavailable", errors.New("dial tcp: refused"))).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/bank-transactions/reconcile", nil)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.NotContains(w.Body.String(), "dial tcp")
	suite.Contains(w.Body.String(), "Failed to reconcile")
}

func (suite *HandlerTestSuite) TestManualMatch_AlreadyMatched() {
	suite.mockReconService.On("ManualMatch", mock.Anything, "t1", "acc-1", (*string)(nil), suite.userID).
		Return(nil, apperrors.ErrConflict).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/bank-transactions/t1/match", dto.ManualMatchRequest{AccountID: "acc-1"})

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockReconService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestManualMatch_LinksGivenPayment() {
	paymentID := "p9"
	accountID := "acc-1"
	matched := &domain.BankStatementTransaction{TransactionID: "t1", Status: domain.Manual, AccountID: &accountID, PaymentID: &paymentID}
	suite.mockReconService.On("ManualMatch", mock.Anything, "t1", "acc-1", mock.MatchedBy(func(p *string) bool {
		return p != nil && *p == "p9"
	}), suite.userID).Return(matched, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/bank-transactions/t1/match", dto.ManualMatchRequest{AccountID: "acc-1", PaymentID: &paymentID})

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.BankStatementTransaction
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.Manual, resp.Status)
}

func (suite *HandlerTestSuite) TestListBankTransactions_UnknownStatus() {
	w := suite.do(http.MethodGet, "/api/v1/bank-transactions?status=DONE", nil, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReconService.AssertNotCalled(suite.T(), "ListTransactions", mock.Anything, mock.Anything)
}
