package services

import (
	"context"

	"github.com/atelierdecor/portal_backend/internal/core/domain"
	"github.com/atelierdecor/portal_backend/internal/dto"
)

// LedgerEditingSvcFacade defines create/update/delete of ledger entries.
// Mutations are rejected with apperrors.ErrImmutableRecord once the target
// entry has been frozen into a version.
type LedgerEditingSvcFacade interface {
	// CreateEntry validates and persists a new entry in the open ledger.
	CreateEntry(ctx context.Context, clientID string, kind domain.LedgerKind, req dto.CreateEntryRequest) (*domain.LedgerEntry, error)

	// UpdateEntry applies a partial update to an open-ledger entry.
	UpdateEntry(ctx context.Context, clientID string, kind domain.LedgerKind, entryID string, req dto.UpdateEntryRequest) (*domain.LedgerEntry, error)

	// DeleteEntry removes an open-ledger entry.
	DeleteEntry(ctx context.Context, clientID string, kind domain.LedgerKind, entryID string) error
}

// VersionSnapshotSvcFacade freezes the open ledger into numbered versions.
type VersionSnapshotSvcFacade interface {
	// CreateSnapshot freezes every open-ledger entry for (client, kind) into a
	// new immutable version and advances the discussion state.
	CreateSnapshot(ctx context.Context, clientID string, kind domain.LedgerKind) (*domain.Version, error)
}

// LedgerQuerySvcFacade provides the read-only ledger views.
type LedgerQuerySvcFacade interface {
	// GetHistory returns the frozen versions ascending by version number.
	GetHistory(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.Version, error)

	// GetOpenLedger returns the current editable entries, computed fresh on
	// every call, ordered by date.
	GetOpenLedger(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.LedgerEntry, error)

	// GetLedgerSummary returns derived totals over the open ledger and history.
	GetLedgerSummary(ctx context.Context, clientID string, kind domain.LedgerKind) (*dto.LedgerSummaryResponse, error)
}

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Editing  LedgerEditingSvcFacade
	Snapshot VersionSnapshotSvcFacade
	Query    LedgerQuerySvcFacade
}
