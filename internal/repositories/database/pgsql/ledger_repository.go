package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelierdecor/portal_backend/internal/apperrors"
	"github.com/atelierdecor/portal_backend/internal/core/domain"
	portsrepo "github.com/atelierdecor/portal_backend/internal/core/ports/repositories"
)

// querier is the subset of pgx operations shared by *pgxpool.Pool and pgx.Tx,
// letting the same repository methods run pooled or inside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxLedgerRepository persists ledger entries, versions and discussion state.
type PgxLedgerRepository struct {
	BaseRepository
	db querier
}

// NewPgxLedgerRepository creates a new repository for ledger data.
func NewPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithLock {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		db:             pool,
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryWithLock
var _ portsrepo.LedgerRepositoryWithLock = (*PgxLedgerRepository)(nil)

// withTx returns a copy of the repository bound to the given transaction.
func (r *PgxLedgerRepository) withTx(tx pgx.Tx) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: r.BaseRepository,
		db:             tx,
	}
}

// WithLedgerLock serializes access per (client, kind) by row-locking the
// discussion-state record inside a transaction. The row is created on first
// use, then SELECT ... FOR UPDATE blocks every concurrent snapshot or edit on
// the same ledger until commit.
func (r *PgxLedgerRepository) WithLedgerLock(ctx context.Context, clientID string, kind domain.LedgerKind, fn func(repo portsrepo.LedgerRepositoryFacade) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored once the transaction commits

	_, err = tx.Exec(ctx, `
		INSERT INTO discussion_states (client_id, kind, completed, version_count, updated_at)
		VALUES ($1, $2, FALSE, 0, NOW())
		ON CONFLICT (client_id, kind) DO NOTHING;
	`, clientID, kind)
	if err != nil {
		return mapConflict(apperrors.NewAppError(500, "failed to ensure discussion state for client "+clientID, err))
	}

	_, err = tx.Exec(ctx, `
		SELECT 1 FROM discussion_states
		WHERE client_id = $1 AND kind = $2
		FOR UPDATE;
	`, clientID, kind)
	if err != nil {
		return mapConflict(apperrors.NewAppError(500, "failed to lock discussion state for client "+clientID, err))
	}

	if err := fn(r.withTx(tx)); err != nil {
		return mapConflict(err)
	}

	return mapConflict(r.Commit(ctx, tx))
}

// mapConflict translates Postgres serialization failures into ErrConflict so
// callers can retry them, leaving all other errors untouched.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return apperrors.ErrConflict
		}
	}
	return err
}
