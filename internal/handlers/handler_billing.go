package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/water_billing_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// billingHandler covers the monthly cycle: meter readings, accruals and payments.
type billingHandler struct {
	readingService portssvc.MeterReadingSvcFacade
	accrualService portssvc.AccrualSvcFacade
	paymentService portssvc.PaymentSvcFacade
}

func registerBillingRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &billingHandler{
		readingService: services.Reading,
		accrualService: services.Accrual,
		paymentService: services.Payment,
	}

	readings := rg.Group("/readings")
	{
		readings.POST("", h.recordReading)
		readings.GET("", h.listReadings)
	}

	accruals := rg.Group("/accruals")
	{
		accruals.POST("/run", h.runAccruals)
		accruals.GET("", h.listAccruals)
		accruals.GET("/:id", h.getAccrual)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("", h.recordPayment)
		payments.GET("", h.listPayments)
		payments.GET("/:id", h.getPayment)
	}
}

// recordReading godoc
// @Summary Record a meter reading
// @Description A value below the previous reading is rejected unless manualOverride is set.
// @Tags readings
// @Accept  json
// @Produce  json
// @Param   reading body dto.RecordReadingRequest true "Reading"
// @Success 201 {object} domain.MeterReading
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Reading already recorded for this date"
// @Failure 422 {object} map[string]string "Reading out of order with its neighbours"
// @Failure 500 {object} map[string]string "Failed to record reading"
// @Security BearerAuth
// @Router /readings [post]
func (h *billingHandler) recordReading(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordReading", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("account_id", req.AccountID))

	reading, err := h.readingService.RecordReading(c.Request.Context(), req, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to record reading")
		return
	}

	logger.Info("Meter reading recorded", slog.String("reading_id", reading.ReadingID), slog.Bool("manual_override", req.ManualOverride))
	c.JSON(http.StatusCreated, reading)
}

// listReadings godoc
// @Summary List meter readings of an account
// @Tags readings
// @Produce  json
// @Param   accountID query string true "Account ID"
// @Success 200 {object} dto.ListReadingsResponse
// @Failure 400 {object} map[string]string "accountID is required"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list readings"
// @Security BearerAuth
// @Router /readings [get]
func (h *billingHandler) listReadings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Query("accountID")
	if accountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountID is required"})
		return
	}

	readings, err := h.readingService.ListReadings(c.Request.Context(), accountID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to list readings")
		return
	}
	c.JSON(http.StatusOK, dto.ListReadingsResponse{Readings: readings})
}

// runAccruals godoc
// @Summary Run monthly accruals
// @Description Bills every active account not yet billed for the period. Accounts that fail are listed with a reason; the rest are still billed.
// @Tags accruals
// @Accept  json
// @Produce  json
// @Param   run body dto.RunAccrualsRequest true "Billing period"
// @Success 200 {object} dto.AccrualRunResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A run for this period is in progress"
// @Failure 422 {object} map[string]string "No active tariff"
// @Failure 500 {object} map[string]string "Failed to run accruals"
// @Security BearerAuth
// @Router /accruals/run [post]
func (h *billingHandler) runAccruals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RunAccrualsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RunAccruals", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	period, err := domain.ParseBillingPeriod(req.Period)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger = logger.With(slog.String("period", period.String()))

	result, err := h.accrualService.RunMonthlyAccruals(c.Request.Context(), period, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to run accruals")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccrualRunResponse(result))
}

// listAccruals godoc
// @Summary List accruals
// @Tags accruals
// @Produce  json
// @Param   accountID query string false "Filter by account"
// @Param   period query string false "Filter by period (YYYY-MM)"
// @Success 200 {object} dto.ListAccrualsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accruals"
// @Security BearerAuth
// @Router /accruals [get]
func (h *billingHandler) listAccruals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccrualsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListAccruals", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accruals, err := h.accrualService.ListAccruals(c.Request.Context(), portsrepo.AccrualFilter{
		AccountID: params.AccountID,
		Period:    params.Period,
	})
	if err != nil {
		respondWithError(c, logger, err, "Failed to list accruals")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccrualsResponse{Accruals: accruals})
}

// getAccrual godoc
// @Summary Get an accrual with its breakdown
// @Tags accruals
// @Produce  json
// @Param   id path string true "Accrual ID"
// @Success 200 {object} domain.Accrual
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Accrual not found"
// @Failure 500 {object} map[string]string "Failed to get accrual"
// @Security BearerAuth
// @Router /accruals/{id} [get]
func (h *billingHandler) getAccrual(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accrual, err := h.accrualService.GetAccrual(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to get accrual")
		return
	}
	c.JSON(http.StatusOK, accrual)
}

// recordPayment godoc
// @Summary Record a payment
// @Description Credits the account. Payments are never edited; corrections go through adjustments.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} domain.Payment
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to record payment"
// @Security BearerAuth
// @Router /payments [post]
func (h *billingHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("account_id", req.AccountID))

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), req, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to record payment")
		return
	}

	logger.Info("Payment recorded", slog.String("payment_id", payment.PaymentID), slog.String("amount", payment.Amount.String()))
	c.JSON(http.StatusCreated, payment)
}

// listPayments godoc
// @Summary List payments
// @Tags payments
// @Produce  json
// @Param   accountID query string false "Filter by account"
// @Param   controllerID query string false "Filter by controller"
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list payments"
// @Security BearerAuth
// @Router /payments [get]
func (h *billingHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListPayments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	filter := portsrepo.PaymentFilter{AccountID: params.AccountID, ControllerID: params.ControllerID}
	filter.From = parseOptionalDate(params.From)
	filter.To = parseOptionalDate(params.To)

	payments, err := h.paymentService.ListPayments(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ListPaymentsResponse{Payments: payments})
}

// getPayment godoc
// @Summary Get a payment by ID
// @Tags payments
// @Produce  json
// @Param   id path string true "Payment ID"
// @Success 200 {object} domain.Payment
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 500 {object} map[string]string "Failed to get payment"
// @Security BearerAuth
// @Router /payments/{id} [get]
func (h *billingHandler) getPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to get payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// parseOptionalDate parses a YYYY-MM-DD value already checked by the binding tags.
func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil
	}
	return &t
}
