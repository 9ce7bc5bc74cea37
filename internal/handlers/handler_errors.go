package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/water_billing_ledger/internal/apperrors"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondWithError maps a service error onto an HTTP status. Unknown errors are logged and
// reported as 500 with the generic failure message so internals do not leak.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, failure string) {
	var importErr *apperrors.ImportError
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &importErr):
		logger.Warn("Import rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  importErr.Error(),
			"line":   importErr.Line,
			"column": importErr.Column,
			"value":  importErr.Value,
		})
	case errors.As(err, &appErr):
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error(failure, slog.String("error", err.Error()))
			c.JSON(appErr.Code, gin.H{"error": failure})
			return
		}
		logger.Warn(failure, slog.String("error", err.Error()))
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrDuplicateAccrual),
		errors.Is(err, apperrors.ErrDuplicateClosing),
		errors.Is(err, apperrors.ErrDuplicatePenalty),
		errors.Is(err, apperrors.ErrPostingWithdrawn),
		errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidConsumption),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrMissingTariff),
		errors.Is(err, apperrors.ErrMissingReading),
		errors.Is(err, apperrors.ErrAmbiguousMatch),
		errors.Is(err, apperrors.ErrNoMatch):
		logger.Warn("Business rule violated", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error(failure, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
	}
}

// actorFromContext returns the authenticated user or writes 401.
func actorFromContext(c *gin.Context, logger *slog.Logger) (string, bool) {
	actor, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return actor, true
}
