package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/atelierdecor/portal_backend/internal/apperrors"
	"github.com/atelierdecor/portal_backend/internal/core/domain"
	"github.com/atelierdecor/portal_backend/internal/models"
	"github.com/atelierdecor/portal_backend/internal/utils/mapping"
)

// GetDiscussionState retrieves the freeze tracker for (client, kind),
// returning the implicit zero state when no row exists yet.
func (r *PgxLedgerRepository) GetDiscussionState(ctx context.Context, clientID string, kind domain.LedgerKind) (*domain.DiscussionState, error) {
	query := `
		SELECT client_id, kind, completed, last_boundary_at, version_count, updated_at
		FROM discussion_states
		WHERE client_id = $1 AND kind = $2;
	`
	var m models.DiscussionState
	err := r.db.QueryRow(ctx, query, clientID, kind).Scan(
		&m.ClientID,
		&m.Kind,
		&m.Completed,
		&m.LastBoundaryAt,
		&m.VersionCount,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			state := domain.NewDiscussionState(clientID, kind)
			return &state, nil
		}
		return nil, apperrors.NewAppError(500, "failed to find discussion state for client "+clientID, err)
	}

	state := mapping.ToDomainDiscussionState(m)
	return &state, nil
}

// AdvanceDiscussionState marks the discussion completed, moves the boundary to
// boundaryAt and increments the version count. The state only ever advances;
// nothing decrements the count or clears the boundary.
func (r *PgxLedgerRepository) AdvanceDiscussionState(ctx context.Context, clientID string, kind domain.LedgerKind, boundaryAt time.Time) (*domain.DiscussionState, error) {
	query := `
		INSERT INTO discussion_states (client_id, kind, completed, last_boundary_at, version_count, updated_at)
		VALUES ($1, $2, TRUE, $3, 1, $3)
		ON CONFLICT (client_id, kind) DO UPDATE
		SET completed = TRUE,
		    last_boundary_at = EXCLUDED.last_boundary_at,
		    version_count = discussion_states.version_count + 1,
		    updated_at = EXCLUDED.updated_at
		RETURNING client_id, kind, completed, last_boundary_at, version_count, updated_at;
	`
	var m models.DiscussionState
	err := r.db.QueryRow(ctx, query, clientID, kind, boundaryAt).Scan(
		&m.ClientID,
		&m.Kind,
		&m.Completed,
		&m.LastBoundaryAt,
		&m.VersionCount,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to advance discussion state for client "+clientID, err)
	}

	state := mapping.ToDomainDiscussionState(m)
	return &state, nil
}
