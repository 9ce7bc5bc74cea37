package messaging

import (
	"context"
	"log/slog"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
)

// LogPublisher writes events to the structured log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs through logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

var _ ports.EventPublisher = (*LogPublisher)(nil)

func (p *LogPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	p.logger.InfoContext(ctx, "Ledger event",
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.Type)),
		slog.String("subject_id", event.SubjectID),
		slog.String("actor", event.Actor),
		slog.Any("payload", event.Payload))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
