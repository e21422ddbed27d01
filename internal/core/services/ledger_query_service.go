package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/atelierdecor/portal_backend/internal/core/domain"
	portsrepo "github.com/atelierdecor/portal_backend/internal/core/ports/repositories"
	portssvc "github.com/atelierdecor/portal_backend/internal/core/ports/services"
	"github.com/atelierdecor/portal_backend/internal/dto"
	"github.com/atelierdecor/portal_backend/internal/middleware"
)

// ledgerQueryService provides the read-only ledger views: frozen history and
// the current open ledger. Results are always computed fresh from the store,
// never memoized, so concurrent edits are reflected immediately. Views that
// combine the boundary with entry rows read both under the ledger lock so a
// freeze landing mid-read cannot report a just-frozen entry as still open.
type ledgerQueryService struct {
	repo portsrepo.LedgerRepositoryWithLock
}

// NewLedgerQueryService creates a new LedgerQueryService.
func NewLedgerQueryService(repo portsrepo.LedgerRepositoryWithLock) portssvc.LedgerQuerySvcFacade {
	return &ledgerQueryService{repo: repo}
}

// Ensure ledgerQueryService implements the portssvc.LedgerQuerySvcFacade interface
var _ portssvc.LedgerQuerySvcFacade = (*ledgerQueryService)(nil)

// GetHistory returns every frozen version for (client, kind) ascending by
// version number, each carrying its own entry copies and precomputed total.
func (s *ledgerQueryService) GetHistory(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.Version, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	versions, err := s.repo.ListVersions(ctx, clientID, kind)
	if err != nil {
		logger.Error("Failed to list versions", slog.String("error", err.Error()), slog.String("client_id", clientID), slog.String("kind", string(kind)))
		return nil, fmt.Errorf("failed to retrieve version history: %w", err)
	}

	logger.Debug("Version history retrieved", slog.String("client_id", clientID), slog.String("kind", string(kind)), slog.Int("count", len(versions)))
	return versions, nil
}

// GetOpenLedger returns the editable entries created after the last freeze
// boundary (or all entries, if the ledger has never been frozen), ordered by
// date.
func (s *ledgerQueryService) GetOpenLedger(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var entries []domain.LedgerEntry
	err := s.repo.WithLedgerLock(ctx, clientID, kind, func(repo portsrepo.LedgerRepositoryFacade) error {
		state, err := repo.GetDiscussionState(ctx, clientID, kind)
		if err != nil {
			logger.Error("Failed to read discussion state", slog.String("error", err.Error()), slog.String("client_id", clientID), slog.String("kind", string(kind)))
			return fmt.Errorf("failed to read discussion state: %w", err)
		}

		entries, err = repo.ListEntriesAfter(ctx, clientID, kind, state.LastBoundaryAt)
		if err != nil {
			logger.Error("Failed to list open ledger entries", slog.String("error", err.Error()), slog.String("client_id", clientID), slog.String("kind", string(kind)))
			return fmt.Errorf("failed to retrieve open ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// GetLedgerSummary derives totals over the open ledger and the frozen history.
// All aggregates are pure functions over the fetched rows.
func (s *ledgerQueryService) GetLedgerSummary(ctx context.Context, clientID string, kind domain.LedgerKind) (*dto.LedgerSummaryResponse, error) {
	var (
		state    *domain.DiscussionState
		open     []domain.LedgerEntry
		versions []domain.Version
	)
	err := s.repo.WithLedgerLock(ctx, clientID, kind, func(repo portsrepo.LedgerRepositoryFacade) error {
		var err error
		state, err = repo.GetDiscussionState(ctx, clientID, kind)
		if err != nil {
			return fmt.Errorf("failed to read discussion state: %w", err)
		}

		open, err = repo.ListEntriesAfter(ctx, clientID, kind, state.LastBoundaryAt)
		if err != nil {
			return fmt.Errorf("failed to retrieve open ledger: %w", err)
		}

		versions, err = repo.ListVersions(ctx, clientID, kind)
		if err != nil {
			return fmt.Errorf("failed to retrieve version history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	openTotal := domain.SumEntries(open)
	openAverage := decimal.Zero
	if len(open) > 0 {
		openAverage = openTotal.DivRound(decimal.NewFromInt(int64(len(open))), 2)
	}

	historyTotal := decimal.Zero
	historyCount := 0
	for _, v := range versions {
		historyTotal = historyTotal.Add(v.Total)
		historyCount += v.EntryCount
	}

	return &dto.LedgerSummaryResponse{
		ClientID:       clientID,
		Kind:           kind,
		VersionCount:   state.VersionCount,
		LastBoundaryAt: state.LastBoundaryAt,
		OpenTotal:      openTotal,
		OpenCount:      len(open),
		OpenAverage:    openAverage,
		HistoryTotal:   historyTotal,
		HistoryCount:   historyCount,
		GrandTotal:     historyTotal.Add(openTotal),
	}, nil
}
