package domain

import "time"

// DiscussionState tracks how many times the (client, kind) ledger has been
// frozen and where the most recent freeze boundary lies. It is implicitly
// created with a zero count on first access and only ever advances: the count
// never decreases and the boundary is never cleared.
type DiscussionState struct {
	ClientID       string     `json:"clientID"`
	Kind           LedgerKind `json:"kind"`
	Completed      bool       `json:"completed"` // True once at least one snapshot exists
	LastBoundaryAt *time.Time `json:"lastBoundaryAt,omitempty"`
	VersionCount   int        `json:"versionCount"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewDiscussionState returns the implicit open state for a ledger that has
// never been frozen.
func NewDiscussionState(clientID string, kind LedgerKind) DiscussionState {
	return DiscussionState{
		ClientID: clientID,
		Kind:     kind,
	}
}
