package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
	"github.com/SscSPs/water_billing_ledger/internal/middleware"
	"github.com/SscSPs/water_billing_ledger/pkg/clock"
	"github.com/google/uuid"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Clock  clock.Clock
	Events ports.EventPublisher
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// Now returns the service clock's current time, falling back to UTC wall time.
func (s *BaseService) Now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

// Publish emits an event. Delivery failures are logged and never fail the calling operation,
// the database stays the source of truth.
func (s *BaseService) Publish(ctx context.Context, eventType domain.EventType, actor string, subjectID string, payload map[string]any) {
	if s.Events == nil {
		return
	}
	event := domain.LedgerEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: s.Now(),
		Actor:      actor,
		SubjectID:  subjectID,
		Payload:    payload,
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger event",
			slog.String("event_type", string(eventType)),
			slog.String("subject_id", subjectID))
	}
}
