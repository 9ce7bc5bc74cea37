package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/SscSPs/water_billing_ledger/internal/handlers"
	"github.com/SscSPs/water_billing_ledger/internal/platform/config"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	mockLedgerService  *MockLedgerService
	mockDebtService    *MockDebtCaseService
	mockClosingService *MockCheckClosingService
	mockAccrualService *MockAccrualService
	mockPaymentService *MockPaymentService
	mockReconService   *MockReconciliationService
	clock              *clock.Fixed
	jwtSecret          string
	userID             string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *HandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "wbl-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()
	suite.clock = clock.NewFixed(time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC))

	suite.mockAccountService = new(MockAccountService)
	suite.mockLedgerService = new(MockLedgerService)
	suite.mockDebtService = new(MockDebtCaseService)
	suite.mockClosingService = new(MockCheckClosingService)
	suite.mockAccrualService = new(MockAccrualService)
	suite.mockPaymentService = new(MockPaymentService)
	suite.mockReconService = new(MockReconciliationService)

	cfg := &config.Config{
		JWTSecret:   suite.jwtSecret,
		RateLimit:   "1000-M",
		CORSOrigins: []string{"*"},
	}
	services := &portssvc.ServiceContainer{
		Account:        suite.mockAccountService,
		Accrual:        suite.mockAccrualService,
		Payment:        suite.mockPaymentService,
		Ledger:         suite.mockLedgerService,
		DebtCase:       suite.mockDebtService,
		Reconciliation: suite.mockReconService,
		CheckClosing:   suite.mockClosingService,
	}
	err := handlers.RegisterRoutes(suite.router, cfg, services, suite.clock, nil)
	suite.Require().NoError(err)
}

func (suite *HandlerTestSuite) do(method, url string, body []byte, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) doJSON(method, url string, payload any) *httptest.ResponseRecorder {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		suite.Require().NoError(err)
	}
	return suite.do(method, url, body, "application/json")
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestCreateAccount_Success() {
	expected := &domain.Account{
		AccountID:       uuid.NewString(),
		PersonalAccount: "25030001",
		FullName:        "Asel Nurlanovna",
		HouseholdSize:   3,
		BuildingType:    domain.Private,
		WaterTariffMode: domain.ByPerson,
		Status:          domain.AccountActive,
		Balance:         decimal.Zero,
	}
	suite.mockAccountService.On("CreateAccount",
		mock.Anything,
		mock.MatchedBy(func(req dto.CreateAccountRequest) bool {
			return req.FullName == "Asel Nurlanovna" && req.HouseholdSize == 3
		}),
		suite.userID,
	).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/accounts", map[string]any{
		"fullName":        "Asel Nurlanovna",
		"address":         "Lenina 12",
		"phone":           "+996555000111",
		"householdSize":   3,
		"buildingType":    "PRIVATE",
		"waterTariffMode": "BY_PERSON",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("25030001", resp.PersonalAccount)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreateAccount_InvalidBody() {
	w := suite.doJSON(http.MethodPost, "/api/v1/accounts", map[string]any{
		"address":         "Lenina 12",
		"householdSize":   0,
		"buildingType":    "CASTLE",
		"waterTariffMode": "BY_PERSON",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestMissingToken_Unauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts/abc", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "GetAccountByID", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockAccountService.On("GetAccountByID", mock.Anything, "missing").
		Return(nil, fmt.Errorf("account missing: %w", apperrors.ErrNotFound)).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/accounts/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestImportAccounts_RowRejected() {
	csvData := "name,address,phone,household_size,building_type,water_tariff_mode,status\n" +
		"Asel,Lenina 12,+996555000111,2,PRIVATE,BY_PERSON,ACTIVE\n" +
		"Bakyt,Lenina 14,+996555000112,zero,PRIVATE,BY_PERSON,ACTIVE\n"

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "accounts.csv")
	suite.Require().NoError(err)
	_, err = part.Write([]byte(csvData))
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	suite.mockAccountService.On("ImportAccounts", mock.Anything, []byte(csvData), suite.userID).
		Return(nil, &apperrors.ImportError{Line: 3, Column: "household_size", Value: "zero", Reason: "must be a whole number"}).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/import", body.Bytes(), writer.FormDataContentType())

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp map[string]any
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(float64(3), resp["line"])
	suite.Equal("household_size", resp["column"])
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestImportAccounts_MissingFile() {
	w := suite.do(http.MethodPost, "/api/v1/accounts/import", []byte("plain"), "text/plain")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "ImportAccounts", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGetBalance_ReportsDaysOverdue() {
	overdueSince := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	suite.mockLedgerService.On("GetBalance", mock.Anything, "acc-1").Return(&domain.Account{
		AccountID:    "acc-1",
		Balance:      decimal.RequireFromString("-1500.00"),
		OverdueSince: &overdueSince,
	}, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/accounts/acc-1/balance", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountBalanceResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(9, resp.DaysOverdue)
	suite.True(resp.Balance.Equal(decimal.RequireFromString("-1500")))
}

func (suite *HandlerTestSuite) TestListLedgerEntries_PassesToken() {
	token := "next-page"
	entries := []domain.LedgerEntry{{EntryID: "e1", AccountID: "acc-1"}}
	suite.mockLedgerService.On("ListEntries", mock.Anything, "acc-1", 5, &token).
		Return(entries, (*string)(nil), nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/accounts/acc-1/ledger?limit=5&nextToken=next-page", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListLedgerEntriesResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Entries, 1)
	suite.Nil(resp.NextToken)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestTransitionDebtCase_InvalidTransition() {
	suite.mockDebtService.On("Transition", mock.Anything, "case-1", domain.CasePreLegal, suite.userID, "skip warning").
		Return(nil, fmt.Errorf("MONITORING to PRE_LEGAL: %w", apperrors.ErrInvalidTransition)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/debt-cases/case-1/transitions", dto.TransitionDebtCaseRequest{
		TargetStatus: "PRE_LEGAL",
		Action:       "skip warning",
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.mockDebtService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestRunSweep_DefaultsToToday() {
	suite.mockDebtService.On("RunDailySweep", mock.Anything, suite.clock.Now(), suite.userID).
		Return(&domain.SweepResult{Day: "2025-03-10"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/debt-cases/sweep", nil, "")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockDebtService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreateCheckClosing_Duplicate() {
	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	suite.mockClosingService.On("CreateCheckClosing", mock.Anything, date, "ctrl-7", "", suite.userID).
		Return(nil, apperrors.ErrDuplicateClosing).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/check-closings", dto.CreateCheckClosingRequest{
		ClosingDate:  "2025-03-10",
		ControllerID: "ctrl-7",
	})

	suite.Equal(http.StatusConflict, w.Code)
	suite.True(strings.Contains(w.Body.String(), "check closing already exists"))
	suite.mockClosingService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCancelCheckClosing_RequiresReason() {
	w := suite.doJSON(http.MethodPost, "/api/v1/check-closings/cl-1/cancel", map[string]string{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockClosingService.AssertNotCalled(suite.T(), "CancelCheckClosing", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Run Test Suite ---
func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
