package events

import (
	"context"
	"time"

	"github.com/atelierdecor/portal_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// VersionCreated is emitted after a snapshot commits. Downstream consumers
// (notifications, reporting) subscribe to it; the ledger engine itself never
// depends on delivery.
type VersionCreated struct {
	ClientID      string            `json:"clientID"`
	Kind          domain.LedgerKind `json:"kind"`
	VersionNumber int               `json:"versionNumber"`
	BoundaryAt    time.Time         `json:"boundaryAt"`
	Total         decimal.Decimal   `json:"total"`
	EntryCount    int               `json:"entryCount"`
}

// Publisher emits ledger lifecycle events.
type Publisher interface {
	PublishVersionCreated(ctx context.Context, event VersionCreated) error
	Close() error
}

// NoopPublisher discards every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishVersionCreated(ctx context.Context, event VersionCreated) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
