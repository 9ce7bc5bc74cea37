package ports

import (
	"context"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
)

// Locker hands out named, expiring mutual-exclusion locks shared by every instance of the service.
type Locker interface {
	// Acquire takes the lock named key for at most ttl. It fails with apperrors.ErrConflict when
	// the lock is held elsewhere. The returned release func is safe to call once the lock expired.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// EventPublisher delivers ledger events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
	Close() error
}

// StatementArchive keeps the raw bytes of imported bank statements.
type StatementArchive interface {
	// Store writes data under key and returns the key it was stored under.
	Store(ctx context.Context, key string, contentType string, data []byte) (string, error)
}

// SheetReader reads a cell range of a spreadsheet as rows of strings.
type SheetReader interface {
	ReadRange(ctx context.Context, readRange string) ([][]string, error)
}
