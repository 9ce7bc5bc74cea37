package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/water_billing_ledger/internal/core/ports/services"
	"github.com/SscSPs/water_billing_ledger/internal/dto"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type tariffHandler struct {
	tariffService portssvc.TariffSvcFacade
}

func registerTariffRoutes(rg *gin.RouterGroup, tariffService portssvc.TariffSvcFacade) {
	h := &tariffHandler{tariffService: tariffService}

	tariffs := rg.Group("/tariffs")
	{
		tariffs.POST("", h.createTariff)
		tariffs.GET("", h.listTariffs)
		tariffs.GET("/active", h.getActiveTariff)
		tariffs.GET("/:id", h.getTariff)
	}
}

// createTariff godoc
// @Summary Publish a tariff version
// @Description Stores a new tariff table and makes it the active version. Earlier versions are kept.
// @Tags tariffs
// @Accept  json
// @Produce  json
// @Param   tariff body dto.CreateTariffRequest true "Tariff table"
// @Success 201 {object} domain.Tariff
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create tariff"
// @Security BearerAuth
// @Router /tariffs [post]
func (h *tariffHandler) createTariff(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTariff", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	tariff, err := h.tariffService.CreateTariff(c.Request.Context(), req, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create tariff")
		return
	}

	logger.Info("Tariff version created", slog.String("tariff_id", tariff.TariffID), slog.String("effective_from", req.EffectiveFrom))
	c.JSON(http.StatusCreated, tariff)
}

// getActiveTariff godoc
// @Summary Get the active tariff
// @Tags tariffs
// @Produce  json
// @Success 200 {object} domain.Tariff
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "No active tariff"
// @Failure 500 {object} map[string]string "Failed to get tariff"
// @Security BearerAuth
// @Router /tariffs/active [get]
func (h *tariffHandler) getActiveTariff(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tariff, err := h.tariffService.GetActiveTariff(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to get tariff")
		return
	}
	c.JSON(http.StatusOK, tariff)
}

// getTariff godoc
// @Summary Get a tariff version by ID
// @Tags tariffs
// @Produce  json
// @Param   id path string true "Tariff ID"
// @Success 200 {object} domain.Tariff
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Tariff not found"
// @Failure 500 {object} map[string]string "Failed to get tariff"
// @Security BearerAuth
// @Router /tariffs/{id} [get]
func (h *tariffHandler) getTariff(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tariff, err := h.tariffService.GetTariffByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to get tariff")
		return
	}
	c.JSON(http.StatusOK, tariff)
}

// listTariffs godoc
// @Summary List tariff versions
// @Tags tariffs
// @Produce  json
// @Success 200 {object} dto.ListTariffsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list tariffs"
// @Security BearerAuth
// @Router /tariffs [get]
func (h *tariffHandler) listTariffs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tariffs, err := h.tariffService.ListTariffs(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to list tariffs")
		return
	}
	c.JSON(http.StatusOK, dto.ListTariffsResponse{Tariffs: tariffs})
}
