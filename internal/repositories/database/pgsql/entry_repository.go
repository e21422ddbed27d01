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

// SaveEntry persists a new ledger entry row.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)
	query := `
		INSERT INTO ledger_entries (entry_id, client_id, kind, entry_date, amount, description, status, bill_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		m.EntryID,
		m.ClientID,
		m.Kind,
		m.Date,
		m.Amount,
		m.Description,
		m.Status,
		m.BillURL,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert ledger entry "+m.EntryID, err)
	}
	return nil
}

// FindEntryByID retrieves a ledger entry by its ID.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	query := `
		SELECT entry_id, client_id, kind, entry_date, amount, description, status, bill_url, created_at, updated_at
		FROM ledger_entries
		WHERE entry_id = $1;
	`
	var m models.LedgerEntry
	err := r.db.QueryRow(ctx, query, entryID).Scan(
		&m.EntryID,
		&m.ClientID,
		&m.Kind,
		&m.Date,
		&m.Amount,
		&m.Description,
		&m.Status,
		&m.BillURL,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger entry "+entryID, err)
	}

	entry := mapping.ToDomainLedgerEntry(m)
	return &entry, nil
}

// ListEntries retrieves all entries for a (client, kind) ledger ordered by
// transaction date with creation time as a tie-breaker.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.LedgerEntry, error) {
	return r.ListEntriesAfter(ctx, clientID, kind, nil)
}

// ListEntriesAfter retrieves entries created strictly after the boundary,
// or all entries when the boundary is nil.
func (r *PgxLedgerRepository) ListEntriesAfter(ctx context.Context, clientID string, kind domain.LedgerKind, after *time.Time) ([]domain.LedgerEntry, error) {
	baseQuery := `
		SELECT entry_id, client_id, kind, entry_date, amount, description, status, bill_url, created_at, updated_at
		FROM ledger_entries
		WHERE client_id = $1 AND kind = $2
	`
	orderByClause := `ORDER BY entry_date, created_at`

	var rows pgx.Rows
	var err error
	if after != nil {
		rows, err = r.db.Query(ctx, baseQuery+` AND created_at > $3 `+orderByClause, clientID, kind, *after)
	} else {
		rows, err = r.db.Query(ctx, baseQuery+orderByClause, clientID, kind)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledger entries for client "+clientID, err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var m models.LedgerEntry
		err := rows.Scan(
			&m.EntryID,
			&m.ClientID,
			&m.Kind,
			&m.Date,
			&m.Amount,
			&m.Description,
			&m.Status,
			&m.BillURL,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry row for client "+clientID, err)
		}
		entries = append(entries, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger entry rows for client "+clientID, err)
	}

	return mapping.ToDomainLedgerEntrySlice(entries), nil
}

// UpdateEntry overwrites the mutable fields of an entry row.
func (r *PgxLedgerRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)
	query := `
		UPDATE ledger_entries
		SET entry_date = $2,
		    amount = $3,
		    description = $4,
		    status = $5,
		    bill_url = $6,
		    updated_at = $7
		WHERE entry_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		m.EntryID,
		m.Date,
		m.Amount,
		m.Description,
		m.Status,
		m.BillURL,
		m.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update ledger entry "+m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("ledger entry " + m.EntryID + " not found for update")
	}
	return nil
}

// DeleteEntry removes an entry row.
func (r *PgxLedgerRepository) DeleteEntry(ctx context.Context, entryID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM ledger_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete ledger entry "+entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("ledger entry " + entryID + " not found for delete")
	}
	return nil
}
