package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
	"github.com/gin-gonic/gin"
)

// ledgerHandler exposes balances, ledger history and manual adjustments.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	clock         clock.Clock
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade, clk clock.Clock) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls, clock: clk}
}

// registerLedgerRoutes registers the ledger routes nested under an account.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, clk clock.Clock) {
	h := newLedgerHandler(ledgerService, clk)

	account := rg.Group("/accounts/:id")
	{
		account.GET("/balance", h.getBalance)
		account.GET("/ledger", h.listEntries)
		account.POST("/adjustments", h.adjust)
	}
}

// getBalance godoc
// @Summary Get an account balance
// @Description Negative balances are debt. DaysOverdue counts from the first day the balance went negative.
// @Tags ledger
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to get balance"
// @Security BearerAuth
// @Router /accounts/{id}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	logger = logger.With(slog.String("account_id", accountID))

	account, err := h.ledgerService.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get balance")
		return
	}

	c.JSON(http.StatusOK, dto.AccountBalanceResponse{
		AccountID:    account.AccountID,
		Balance:      account.Balance,
		OverdueSince: account.OverdueSince,
		DaysOverdue:  account.DaysOverdue(h.clock.Now()),
	})
}

// listEntries godoc
// @Summary List ledger entries of an account
// @Description Newest first, with the balance after each entry. Use nextToken for the following page.
// @Tags ledger
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListLedgerEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list ledger entries"
// @Security BearerAuth
// @Router /accounts/{id}/ledger [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	logger = logger.With(slog.String("account_id", accountID))

	var params dto.ListLedgerEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, nextToken, err := h.ledgerService.ListEntries(c.Request.Context(), accountID, params.Limit, params.NextToken)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list ledger entries")
		return
	}

	c.JSON(http.StatusOK, dto.ListLedgerEntriesResponse{Entries: entries, NextToken: nextToken})
}

// adjust godoc
// @Summary Post a manual adjustment
// @Description Positive amounts reduce the debt, negative amounts increase it. A memo is mandatory.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   adjustment body dto.AdjustmentRequest true "Adjustment"
// @Success 201 {object} domain.LedgerEntry
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to post adjustment"
// @Security BearerAuth
// @Router /accounts/{id}/adjustments [post]
func (h *ledgerHandler) adjust(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Adjust", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("account_id", accountID))

	entry, err := h.ledgerService.Adjust(c.Request.Context(), accountID, req.Amount, req.Memo, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to post adjustment")
		return
	}

	logger.Info("Adjustment posted", slog.String("entry_id", entry.EntryID), slog.String("amount", req.Amount.String()))
	c.JSON(http.StatusCreated, entry)
}
