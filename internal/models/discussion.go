package models

import "time"

// DiscussionState is the per-(client, kind) freeze tracker row. It doubles as
// the lock anchor for snapshot/edit serialization.
type DiscussionState struct {
	ClientID       string     `db:"client_id"`
	Kind           LedgerKind `db:"kind"`
	Completed      bool       `db:"completed"`
	LastBoundaryAt *time.Time `db:"last_boundary_at"`
	VersionCount   int        `db:"version_count"`
	UpdatedAt      time.Time  `db:"updated_at"`
}
