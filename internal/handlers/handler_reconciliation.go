package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reconciliationHandler imports bank statements and matches their lines to abonents.
type reconciliationHandler struct {
	reconService portssvc.ReconciliationSvcFacade
}

func registerReconciliationRoutes(rg *gin.RouterGroup, reconService portssvc.ReconciliationSvcFacade, uploadLimit gin.HandlerFunc) {
	h := &reconciliationHandler{reconService: reconService}

	statements := rg.Group("/statements")
	{
		statements.POST("", uploadLimit, h.importStatement)
		statements.POST("/sheets", uploadLimit, h.importSheet)
	}

	transactions := rg.Group("/bank-transactions")
	{
		transactions.GET("", h.listTransactions)
		transactions.POST("/reconcile", h.reconcile)
		transactions.POST("/:id/match", h.manualMatch)
	}
}

// importStatement godoc
// @Summary Upload a bank statement
// @Description CSV with date, amount and description columns. The raw file is archived and the same file cannot be imported twice.
// @Tags reconciliation
// @Accept  multipart/form-data
// @Produce  json
// @Param   sourceBank formData string true "Bank the statement comes from"
// @Param   file formData file true "Statement CSV"
// @Success 201 {object} dto.ImportStatementResponse
// @Failure 400 {object} map[string]string "Missing file or unparseable row"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Statement already imported"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} map[string]string "Failed to import statement"
// @Security BearerAuth
// @Router /statements [post]
func (h *reconciliationHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	sourceBank := c.PostForm("sourceBank")
	if sourceBank == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Form field 'sourceBank' is required"})
		return
	}

	fileName, data, ok := readUpload(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("source_bank", sourceBank), slog.String("file_name", fileName))

	statement, txns, err := h.reconService.ImportStatement(c.Request.Context(), sourceBank, fileName, data, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to import statement")
		return
	}

	logger.Info("Statement imported", slog.String("statement_id", statement.StatementID), slog.Int("rows", len(txns)))
	c.JSON(http.StatusCreated, dto.ImportStatementResponse{Statement: *statement, Transactions: txns})
}

// importSheet godoc
// @Summary Import a bank statement from the configured spreadsheet
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   sheet body dto.ImportSheetRequest true "Bank and A1 range"
// @Success 201 {object} dto.ImportStatementResponse
// @Failure 400 {object} map[string]string "Invalid input or sheets not configured"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Statement already imported"
// @Failure 500 {object} map[string]string "Failed to import statement"
// @Security BearerAuth
// @Router /statements/sheets [post]
func (h *reconciliationHandler) importSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ImportSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportSheet", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("source_bank", req.SourceBank), slog.String("range", req.Range))

	statement, txns, err := h.reconService.ImportStatementFromSheet(c.Request.Context(), req.SourceBank, req.Range, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to import statement")
		return
	}

	logger.Info("Statement imported from sheet", slog.String("statement_id", statement.StatementID), slog.Int("rows", len(txns)))
	c.JSON(http.StatusCreated, dto.ImportStatementResponse{Statement: *statement, Transactions: txns})
}

// reconcile godoc
// @Summary Auto-match unmatched statement lines
// @Description Lines matching exactly one account by personal account number or name are credited. Ambiguous lines stay UNMATCHED.
// @Tags reconciliation
// @Produce  json
// @Success 200 {object} domain.ReconciliationResult
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to reconcile"
// @Security BearerAuth
// @Router /bank-transactions/reconcile [post]
func (h *reconciliationHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	result, err := h.reconService.Reconcile(c.Request.Context(), actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reconcile")
		return
	}

	logger.Info("Reconciliation pass finished",
		slog.Int("matched", len(result.Matched)),
		slog.Int("ambiguous", len(result.Ambiguous)),
		slog.Int("unmatched", len(result.StillUnmatched)))
	c.JSON(http.StatusOK, result)
}

// manualMatch godoc
// @Summary Match a statement line by hand
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   match body dto.ManualMatchRequest true "Account and optional existing payment"
// @Success 200 {object} domain.BankStatementTransaction
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction, account or payment not found"
// @Failure 409 {object} map[string]string "Line already matched"
// @Failure 500 {object} map[string]string "Failed to match transaction"
// @Security BearerAuth
// @Router /bank-transactions/{id}/match [post]
func (h *reconciliationHandler) manualMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	var req dto.ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ManualMatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("account_id", req.AccountID))

	txn, err := h.reconService.ManualMatch(c.Request.Context(), transactionID, req.AccountID, req.PaymentID, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to match transaction")
		return
	}

	logger.Info("Transaction matched manually")
	c.JSON(http.StatusOK, txn)
}

// listTransactions godoc
// @Summary List statement lines
// @Tags reconciliation
// @Produce  json
// @Param   status query string false "Filter by status" Enums(UNMATCHED, MATCHED, MANUAL)
// @Success 200 {object} dto.ListBankTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /bank-transactions [get]
func (h *reconciliationHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBankTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.reconService.ListTransactions(c.Request.Context(), domain.MatchStatus(params.Status))
	if err != nil {
		respondWithError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ListBankTransactionsResponse{Transactions: txns})
}
