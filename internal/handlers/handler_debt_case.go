package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
	"github.com/gin-gonic/gin"
)

// debtCaseHandler handles collection work on overdue accounts.
type debtCaseHandler struct {
	debtService portssvc.DebtCaseSvcFacade
	clock       clock.Clock
}

func registerDebtCaseRoutes(rg *gin.RouterGroup, debtService portssvc.DebtCaseSvcFacade, clk clock.Clock) {
	h := &debtCaseHandler{debtService: debtService, clock: clk}

	cases := rg.Group("/debt-cases")
	{
		cases.GET("", h.listCases)
		cases.POST("/sweep", h.runSweep)
		cases.GET("/:id", h.getCase)
		cases.POST("/:id/transitions", h.transition)
		cases.POST("/:id/notes", h.addNote)
	}
}

// listCases godoc
// @Summary List debt cases
// @Tags debt-cases
// @Produce  json
// @Param   status query string false "Filter by status" Enums(MONITORING, WARNING_SENT, PRE_LEGAL, LEGAL_ACTION, CLOSED)
// @Success 200 {object} dto.ListDebtCasesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list debt cases"
// @Security BearerAuth
// @Router /debt-cases [get]
func (h *debtCaseHandler) listCases(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListDebtCasesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListDebtCases", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	cases, err := h.debtService.ListCases(c.Request.Context(), domain.DebtCaseStatus(params.Status))
	if err != nil {
		respondWithError(c, logger, err, "Failed to list debt cases")
		return
	}
	c.JSON(http.StatusOK, dto.ListDebtCasesResponse{Cases: cases})
}

// getCase godoc
// @Summary Get a debt case
// @Description Returns the case with its history and the penalties charged under it.
// @Tags debt-cases
// @Produce  json
// @Param   id path string true "Case ID"
// @Success 200 {object} dto.GetDebtCaseResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Case not found"
// @Failure 500 {object} map[string]string "Failed to get debt case"
// @Security BearerAuth
// @Router /debt-cases/{id} [get]
func (h *debtCaseHandler) getCase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caseID := c.Param("id")
	logger = logger.With(slog.String("case_id", caseID))

	debtCase, err := h.debtService.GetCase(c.Request.Context(), caseID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get debt case")
		return
	}
	penalties, err := h.debtService.ListPenalties(c.Request.Context(), caseID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get debt case")
		return
	}

	c.JSON(http.StatusOK, dto.GetDebtCaseResponse{Case: *debtCase, Penalties: penalties})
}

// transition godoc
// @Summary Move a debt case to another status
// @Description Allowed moves: MONITORING to WARNING_SENT, WARNING_SENT to PRE_LEGAL, PRE_LEGAL to LEGAL_ACTION, and any open status to CLOSED.
// @Tags debt-cases
// @Accept  json
// @Produce  json
// @Param   id path string true "Case ID"
// @Param   transition body dto.TransitionDebtCaseRequest true "Target status and action taken"
// @Success 200 {object} domain.DebtCase
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Case not found"
// @Failure 409 {object} map[string]string "Case changed concurrently"
// @Failure 422 {object} map[string]string "Transition not allowed"
// @Failure 500 {object} map[string]string "Failed to transition debt case"
// @Security BearerAuth
// @Router /debt-cases/{id}/transitions [post]
func (h *debtCaseHandler) transition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caseID := c.Param("id")

	var req dto.TransitionDebtCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for TransitionDebtCase", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("case_id", caseID), slog.String("target_status", req.TargetStatus))

	debtCase, err := h.debtService.Transition(c.Request.Context(), caseID, domain.DebtCaseStatus(req.TargetStatus), actor, req.Action)
	if err != nil {
		respondWithError(c, logger, err, "Failed to transition debt case")
		return
	}

	logger.Info("Debt case transitioned")
	c.JSON(http.StatusOK, debtCase)
}

// addNote godoc
// @Summary Add a note to a debt case
// @Tags debt-cases
// @Accept  json
// @Produce  json
// @Param   id path string true "Case ID"
// @Param   note body dto.AddDebtCaseNoteRequest true "Action taken"
// @Success 200 {object} domain.DebtCase
// @Failure 400 {object} map[string]string "Invalid input or case closed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Case not found"
// @Failure 500 {object} map[string]string "Failed to add note"
// @Security BearerAuth
// @Router /debt-cases/{id}/notes [post]
func (h *debtCaseHandler) addNote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caseID := c.Param("id")

	var req dto.AddDebtCaseNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddDebtCaseNote", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("case_id", caseID))

	debtCase, err := h.debtService.AddNote(c.Request.Context(), caseID, actor, req.Action)
	if err != nil {
		respondWithError(c, logger, err, "Failed to add note")
		return
	}
	c.JSON(http.StatusOK, debtCase)
}

// runSweep godoc
// @Summary Run the daily debt sweep
// @Description Opens, escalates and closes cases and charges the daily penalty. Safe to repeat for the same day.
// @Tags debt-cases
// @Accept  json
// @Produce  json
// @Param   sweep body dto.RunDebtSweepRequest false "Day to sweep, today when empty"
// @Success 200 {object} domain.SweepResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A sweep for this day is in progress"
// @Failure 422 {object} map[string]string "No active tariff"
// @Failure 500 {object} map[string]string "Failed to run debt sweep"
// @Security BearerAuth
// @Router /debt-cases/sweep [post]
func (h *debtCaseHandler) runSweep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RunDebtSweepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for RunDebtSweep", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	day := h.clock.Now()
	if req.Day != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, req.Day, day.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	result, err := h.debtService.RunDailySweep(c.Request.Context(), day, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to run debt sweep")
		return
	}
	c.JSON(http.StatusOK, result)
}
