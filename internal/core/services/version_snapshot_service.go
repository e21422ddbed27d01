package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/atelierdecor/portal_backend/internal/core/domain"
	portsrepo "github.com/atelierdecor/portal_backend/internal/core/ports/repositories"
	portssvc "github.com/atelierdecor/portal_backend/internal/core/ports/services"
	"github.com/atelierdecor/portal_backend/internal/events"
	"github.com/atelierdecor/portal_backend/internal/middleware"
)

// versionSnapshotService freezes a (client, kind) open ledger into an
// immutable, sequentially numbered version when an admin marks a discussion
// with the client as complete.
type versionSnapshotService struct {
	repo      portsrepo.LedgerRepositoryWithLock
	publisher events.Publisher
}

// NewVersionSnapshotService creates a new VersionSnapshotService.
func NewVersionSnapshotService(repo portsrepo.LedgerRepositoryWithLock, publisher events.Publisher) portssvc.VersionSnapshotSvcFacade {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &versionSnapshotService{repo: repo, publisher: publisher}
}

// Ensure versionSnapshotService implements the portssvc.VersionSnapshotSvcFacade interface
var _ portssvc.VersionSnapshotSvcFacade = (*versionSnapshotService)(nil)

// CreateSnapshot partitions the ledger at the current instant: every entry
// created after the previous boundary is deep-copied into a new version, the
// boundary moves to now and the version count increments. The whole step runs
// under the (client, kind) ledger lock so a concurrent edit can neither leak
// into the frozen slice nor get lost between the slice and the next open
// ledger. A ledger with no new entries still produces an (empty) version.
func (s *versionSnapshotService) CreateSnapshot(ctx context.Context, clientID string, kind domain.LedgerKind) (*domain.Version, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var version domain.Version
	err := s.repo.WithLedgerLock(ctx, clientID, kind, func(repo portsrepo.LedgerRepositoryFacade) error {
		state, err := repo.GetDiscussionState(ctx, clientID, kind)
		if err != nil {
			return fmt.Errorf("failed to read discussion state: %w", err)
		}

		entries, err := repo.ListEntriesAfter(ctx, clientID, kind, state.LastBoundaryAt)
		if err != nil {
			return fmt.Errorf("failed to list open ledger entries: %w", err)
		}

		// Entries are plain values; copying the slice is a deep copy.
		frozen := make([]domain.LedgerEntry, len(entries))
		copy(frozen, entries)

		now := time.Now().UTC()
		version = domain.Version{
			VersionID:     uuid.NewString(),
			ClientID:      clientID,
			Kind:          kind,
			VersionNumber: state.VersionCount + 1,
			BoundaryAt:    now,
			Entries:       frozen,
			Total:         domain.SumEntries(frozen),
			EntryCount:    len(frozen),
			CreatedAt:     now,
		}

		if err := repo.SaveVersion(ctx, version); err != nil {
			return fmt.Errorf("failed to save version: %w", err)
		}
		if _, err := repo.AdvanceDiscussionState(ctx, clientID, kind, now); err != nil {
			return fmt.Errorf("failed to advance discussion state: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create snapshot", slog.String("error", err.Error()), slog.String("client_id", clientID), slog.String("kind", string(kind)))
		return nil, err
	}

	if version.EntryCount == 0 {
		logger.Warn("Snapshot created with no new entries", slog.String("client_id", clientID), slog.String("kind", string(kind)), slog.Int("version_number", version.VersionNumber))
	}

	// Delivery is best effort; the snapshot is already committed.
	if err := s.publisher.PublishVersionCreated(ctx, events.VersionCreated{
		ClientID:      version.ClientID,
		Kind:          version.Kind,
		VersionNumber: version.VersionNumber,
		BoundaryAt:    version.BoundaryAt,
		Total:         version.Total,
		EntryCount:    version.EntryCount,
	}); err != nil {
		logger.Warn("Failed to publish version created event", slog.String("error", err.Error()), slog.String("version_id", version.VersionID))
	}

	logger.Info("Snapshot created",
		slog.String("version_id", version.VersionID),
		slog.String("client_id", clientID),
		slog.String("kind", string(kind)),
		slog.Int("version_number", version.VersionNumber),
		slog.Int("entry_count", version.EntryCount),
	)
	return &version, nil
}
