package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Version represents one frozen snapshot row. The frozen entries travel as a
// JSON document (entries_data), mirroring the append-only snapshot table.
type Version struct {
	VersionID     string          `db:"version_id"`
	ClientID      string          `db:"client_id"`
	Kind          LedgerKind      `db:"kind"`
	VersionNumber int             `db:"version_number"`
	BoundaryAt    time.Time       `db:"boundary_at"`
	EntriesData   []byte          `db:"entries_data"` // JSONB copy of the frozen entries
	Total         decimal.Decimal `db:"total"`
	EntryCount    int             `db:"entry_count"`
	CreatedAt     time.Time       `db:"created_at"`
}
