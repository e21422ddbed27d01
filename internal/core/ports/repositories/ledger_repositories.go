package repositories

import (
	"context"
	"time"

	"github.com/atelierdecor/portal_backend/internal/core/domain"
)

// EntryReader defines read operations for ledger entry data
type EntryReader interface {
	// FindEntryByID retrieves a single entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// ListEntries retrieves all entries for a (client, kind) ledger ordered by
	// transaction date, then creation time as a tie-breaker.
	ListEntries(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.LedgerEntry, error)

	// ListEntriesAfter retrieves the entries created strictly after the given
	// boundary, same ordering as ListEntries. A nil boundary returns all entries.
	ListEntriesAfter(ctx context.Context, clientID string, kind domain.LedgerKind, after *time.Time) ([]domain.LedgerEntry, error)
}

// EntryWriter defines write operations for ledger entry data
type EntryWriter interface {
	// SaveEntry persists a new entry.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry) error

	// UpdateEntry overwrites the mutable fields of an existing entry.
	UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error

	// DeleteEntry removes an entry row.
	DeleteEntry(ctx context.Context, entryID string) error
}

// VersionReader defines read operations for frozen snapshots
type VersionReader interface {
	// ListVersions retrieves all versions for a (client, kind) ledger in
	// ascending version-number order.
	ListVersions(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.Version, error)
}

// VersionWriter defines write operations for frozen snapshots
type VersionWriter interface {
	// SaveVersion persists a new version. Versions are append-only; there is no
	// update or delete counterpart.
	SaveVersion(ctx context.Context, version domain.Version) error
}

// DiscussionStateRepository tracks the per-(client, kind) freeze state
type DiscussionStateRepository interface {
	// GetDiscussionState retrieves the state for (client, kind), returning the
	// implicit zero state (count 0, no boundary) when no row exists yet.
	GetDiscussionState(ctx context.Context, clientID string, kind domain.LedgerKind) (*domain.DiscussionState, error)

	// AdvanceDiscussionState marks the discussion completed, records boundaryAt
	// as the latest freeze boundary and increments the version count.
	AdvanceDiscussionState(ctx context.Context, clientID string, kind domain.LedgerKind, boundaryAt time.Time) (*domain.DiscussionState, error)
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	EntryReader
	EntryWriter
	VersionReader
	VersionWriter
	DiscussionStateRepository
}

// LedgerRepositoryWithLock extends the facade with per-(client, kind)
// serialization. Everything run inside fn observes and mutates the ledger
// atomically with respect to other locked sections for the same key.
type LedgerRepositoryWithLock interface {
	LedgerRepositoryFacade

	// WithLedgerLock acquires the (clientID, kind) ledger lock, runs fn with a
	// facade bound to the locked scope and releases the lock when fn returns.
	// An error from fn aborts any pending writes.
	WithLedgerLock(ctx context.Context, clientID string, kind domain.LedgerKind, fn func(repo LedgerRepositoryFacade) error) error
}
