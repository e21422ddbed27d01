package pgsql

import (
	"context"

	"github.com/atelierdecor/portal_backend/internal/apperrors"
	"github.com/atelierdecor/portal_backend/internal/core/domain"
	"github.com/atelierdecor/portal_backend/internal/models"
	"github.com/atelierdecor/portal_backend/internal/utils/mapping"
)

// SaveVersion persists a frozen snapshot. The unique constraint on
// (client_id, kind, version_number) guarantees gapless numbering survives
// concurrent snapshot attempts as a duplicate-key failure, not a silent skip.
func (r *PgxLedgerRepository) SaveVersion(ctx context.Context, version domain.Version) error {
	m, err := mapping.ToModelVersion(version)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode version "+version.VersionID, err)
	}

	query := `
		INSERT INTO ledger_versions (version_id, client_id, kind, version_number, boundary_at, entries_data, total, entry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = r.db.Exec(ctx, query,
		m.VersionID,
		m.ClientID,
		m.Kind,
		m.VersionNumber,
		m.BoundaryAt,
		m.EntriesData,
		m.Total,
		m.EntryCount,
		m.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert version "+m.VersionID, err)
	}
	return nil
}

// ListVersions retrieves all versions for a (client, kind) ledger ascending by
// version number.
func (r *PgxLedgerRepository) ListVersions(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.Version, error) {
	query := `
		SELECT version_id, client_id, kind, version_number, boundary_at, entries_data, total, entry_count, created_at
		FROM ledger_versions
		WHERE client_id = $1 AND kind = $2
		ORDER BY version_number;
	`
	rows, err := r.db.Query(ctx, query, clientID, kind)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query versions for client "+clientID, err)
	}
	defer rows.Close()

	versions := []domain.Version{}
	for rows.Next() {
		var m models.Version
		err := rows.Scan(
			&m.VersionID,
			&m.ClientID,
			&m.Kind,
			&m.VersionNumber,
			&m.BoundaryAt,
			&m.EntriesData,
			&m.Total,
			&m.EntryCount,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan version row for client "+clientID, err)
		}

		v, err := mapping.ToDomainVersion(m)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to decode version "+m.VersionID, err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating version rows for client "+clientID, err)
	}

	return versions, nil
}
