package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// checkClosingHandler handles the daily settlement of controller collections.
type checkClosingHandler struct {
	closingService portssvc.CheckClosingSvcFacade
}

func registerCheckClosingRoutes(rg *gin.RouterGroup, closingService portssvc.CheckClosingSvcFacade) {
	h := &checkClosingHandler{closingService: closingService}

	closings := rg.Group("/check-closings")
	{
		closings.POST("", h.createClosing)
		closings.GET("", h.listClosings)
		closings.GET("/:id", h.getClosing)
		closings.POST("/:id/confirm", h.confirmClosing)
		closings.POST("/:id/cancel", h.cancelClosing)
	}
}

// createClosing godoc
// @Summary Close a controller's day
// @Description Claims every payment the controller collected on the date that is not yet in a closing.
// @Tags check-closings
// @Accept  json
// @Produce  json
// @Param   closing body dto.CreateCheckClosingRequest true "Controller and date"
// @Success 201 {object} domain.CheckClosing
// @Failure 400 {object} map[string]string "Invalid input or no payments to close"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A closing already exists for this controller and date"
// @Failure 500 {object} map[string]string "Failed to create check closing"
// @Security BearerAuth
// @Router /check-closings [post]
func (h *checkClosingHandler) createClosing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCheckClosingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCheckClosing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	date, err := time.Parse(time.DateOnly, req.ClosingDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "closingDate must be YYYY-MM-DD"})
		return
	}
	logger = logger.With(slog.String("controller_id", req.ControllerID), slog.String("closing_date", req.ClosingDate))

	closing, err := h.closingService.CreateCheckClosing(c.Request.Context(), date, req.ControllerID, req.Notes, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create check closing")
		return
	}

	logger.Info("Check closing created", slog.String("closing_id", closing.ClosingID), slog.Int("payments", len(closing.PaymentIDs)))
	c.JSON(http.StatusCreated, closing)
}

// getClosing godoc
// @Summary Get a check closing
// @Tags check-closings
// @Produce  json
// @Param   id path string true "Closing ID"
// @Success 200 {object} domain.CheckClosing
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Closing not found"
// @Failure 500 {object} map[string]string "Failed to get check closing"
// @Security BearerAuth
// @Router /check-closings/{id} [get]
func (h *checkClosingHandler) getClosing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	closing, err := h.closingService.GetCheckClosing(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to get check closing")
		return
	}
	c.JSON(http.StatusOK, closing)
}

// listClosings godoc
// @Summary List check closings in a date range
// @Tags check-closings
// @Produce  json
// @Param   controllerID query string false "Filter by controller"
// @Param   from query string true "From date (YYYY-MM-DD)"
// @Param   to query string true "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.ListCheckClosingsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list check closings"
// @Security BearerAuth
// @Router /check-closings [get]
func (h *checkClosingHandler) listClosings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListCheckClosingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListCheckClosings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	from, errFrom := time.Parse(time.DateOnly, params.From)
	to, errTo := time.Parse(time.DateOnly, params.To)
	if errFrom != nil || errTo != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be YYYY-MM-DD"})
		return
	}

	closings, err := h.closingService.ListCheckClosings(c.Request.Context(), params.ControllerID, from, to)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list check closings")
		return
	}
	c.JSON(http.StatusOK, dto.ListCheckClosingsResponse{Closings: closings})
}

// confirmClosing godoc
// @Summary Confirm a pending check closing
// @Tags check-closings
// @Produce  json
// @Param   id path string true "Closing ID"
// @Success 200 {object} domain.CheckClosing
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Closing not found"
// @Failure 409 {object} map[string]string "Closing is not pending"
// @Failure 500 {object} map[string]string "Failed to confirm check closing"
// @Security BearerAuth
// @Router /check-closings/{id}/confirm [post]
func (h *checkClosingHandler) confirmClosing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	closingID := c.Param("id")

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("closing_id", closingID))

	closing, err := h.closingService.ConfirmCheckClosing(c.Request.Context(), closingID, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to confirm check closing")
		return
	}

	logger.Info("Check closing confirmed")
	c.JSON(http.StatusOK, closing)
}

// cancelClosing godoc
// @Summary Cancel a pending check closing
// @Description Releases the claimed payments so a new closing can include them.
// @Tags check-closings
// @Accept  json
// @Produce  json
// @Param   id path string true "Closing ID"
// @Param   cancel body dto.CancelCheckClosingRequest true "Reason"
// @Success 200 {object} domain.CheckClosing
// @Failure 400 {object} map[string]string "Reason missing"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Closing not found"
// @Failure 409 {object} map[string]string "Closing is not pending"
// @Failure 500 {object} map[string]string "Failed to cancel check closing"
// @Security BearerAuth
// @Router /check-closings/{id}/cancel [post]
func (h *checkClosingHandler) cancelClosing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	closingID := c.Param("id")

	var req dto.CancelCheckClosingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CancelCheckClosing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("closing_id", closingID))

	closing, err := h.closingService.CancelCheckClosing(c.Request.Context(), closingID, req.Reason, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to cancel check closing")
		return
	}

	logger.Info("Check closing cancelled")
	c.JSON(http.StatusOK, closing)
}
