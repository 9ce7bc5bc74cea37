package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxUploadSize caps account lists and bank statements.
const maxUploadSize = 10 << 20

// accountHandler handles HTTP requests related to abonent accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts. Uploads go through uploadLimit.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, uploadLimit gin.HandlerFunc) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.POST("/import", uploadLimit, h.importAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.PUT("/:id", h.updateAccount)
		accounts.DELETE("/:id", h.archiveAccount)
	}
}

// createAccount godoc
// @Summary Register an abonent
// @Description Creates an account with a zero balance. The personal account number is generated when omitted.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Personal account already exists"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create account", slog.String("building_type", req.BuildingType), slog.String("tariff_mode", req.WaterTariffMode))

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID), slog.String("personal_account", account.PersonalAccount))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")
	logger = logger.With(slog.String("account_id", accountID))

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Retrieves a page of accounts ordered by personal account number
// @Tags accounts
// @Produce  json
// @Param   status query string false "Filter by status" Enums(ACTIVE, DISCONNECTED, ARCHIVED)
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), domain.AccountStatus(params.Status), params.Limit, params.Offset)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list accounts")
		return
	}

	logger.Info("Accounts listed successfully", slog.Int("count", len(accounts)))
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// updateAccount godoc
// @Summary Update an account
// @Description Updates registry fields. The balance can only change through the ledger.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID to update"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to update account"
// @Security BearerAuth
// @Router /accounts/{id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("account_id", accountID))

	account, err := h.accountService.UpdateAccount(c.Request.Context(), accountID, req, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update account")
		return
	}

	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// archiveAccount godoc
// @Summary Archive an account
// @Description Accounts are never deleted; archived accounts are excluded from billing.
// @Tags accounts
// @Param   id path string true "Account ID to archive"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to archive account"
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *accountHandler) archiveAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("account_id", accountID))

	if err := h.accountService.ArchiveAccount(c.Request.Context(), accountID, actor); err != nil {
		respondWithError(c, logger, err, "Failed to archive account")
		return
	}

	logger.Info("Account archived successfully")
	c.Status(http.StatusNoContent)
}

// importAccounts godoc
// @Summary Import an account list
// @Description Uploads a CSV account list. Every row is validated first; one bad row rejects the whole file.
// @Tags accounts
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "CSV file with a header row"
// @Success 201 {object} dto.ImportAccountsResponse
// @Failure 400 {object} map[string]string "Missing or unreadable file"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Personal account already exists"
// @Failure 422 {object} map[string]interface{} "Row failed validation"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} map[string]string "Failed to import accounts"
// @Security BearerAuth
// @Router /accounts/import [post]
func (h *accountHandler) importAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	fileName, data, ok := readUpload(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("file_name", fileName))
	logger.Info("Received account list", slog.Int("bytes", len(data)))

	accounts, err := h.accountService.ImportAccounts(c.Request.Context(), data, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to import accounts")
		return
	}

	logger.Info("Accounts imported successfully", slog.Int("count", len(accounts)))
	c.JSON(http.StatusCreated, dto.ImportAccountsResponse{
		Imported: len(accounts),
		Accounts: dto.ToListAccountResponse(accounts),
	})
}

// readUpload reads the multipart "file" field, writing 400 when it is missing or too large.
func readUpload(c *gin.Context, logger *slog.Logger) (string, []byte, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Upload without file field", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Multipart field 'file' is required"})
		return "", nil, false
	}
	if header.Size > maxUploadSize {
		logger.Warn("Upload too large", slog.Int64("size", header.Size))
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File exceeds %d bytes", maxUploadSize)})
		return "", nil, false
	}

	file, err := header.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return "", nil, false
	}
	return header.Filename, data, true
}
