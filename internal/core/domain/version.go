package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Version is an immutable, numbered, point-in-time copy of the entries frozen
// at a discussion-completion event. Versions form an append-only log per
// (client, kind): they are never updated or deleted.
type Version struct {
	VersionID     string          `json:"versionID"` // Primary Key (UUID)
	ClientID      string          `json:"clientID"`
	Kind          LedgerKind      `json:"kind"`
	VersionNumber int             `json:"versionNumber"` // 1-based, gapless per client+kind
	BoundaryAt    time.Time       `json:"boundaryAt"`    // Instant the snapshot was taken
	Entries       []LedgerEntry   `json:"entries"`       // Owned deep copy of the frozen entries
	Total         decimal.Decimal `json:"total"`         // Sum of entry amounts, fixed at freeze time
	EntryCount    int             `json:"entryCount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// SumEntries computes the total amount over a slice of entries.
func SumEntries(entries []LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
