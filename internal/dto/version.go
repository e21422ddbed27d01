package dto

import (
	"time"

	"github.com/atelierdecor/portal_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// VersionResponse defines the data returned for a frozen snapshot.
type VersionResponse struct {
	VersionID     string            `json:"versionID"`
	ClientID      string            `json:"clientID"`
	Kind          domain.LedgerKind `json:"kind"`
	VersionNumber int               `json:"versionNumber"`
	BoundaryAt    time.Time         `json:"boundaryAt"`
	Entries       []EntryResponse   `json:"entries"`
	Total         decimal.Decimal   `json:"total"`
	EntryCount    int               `json:"entryCount"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// HistoryResponse is the ordered version history for one (client, kind) ledger.
type HistoryResponse struct {
	Versions []VersionResponse `json:"versions"`
}

// LedgerSummaryResponse aggregates the open ledger and the frozen history.
// All numbers are derived from the returned rows, never separately persisted.
type LedgerSummaryResponse struct {
	ClientID       string            `json:"clientID"`
	Kind           domain.LedgerKind `json:"kind"`
	VersionCount   int               `json:"versionCount"`
	LastBoundaryAt *time.Time        `json:"lastBoundaryAt,omitempty"`
	OpenTotal      decimal.Decimal   `json:"openTotal"`
	OpenCount      int               `json:"openCount"`
	OpenAverage    decimal.Decimal   `json:"openAverage"`
	HistoryTotal   decimal.Decimal   `json:"historyTotal"`
	HistoryCount   int               `json:"historyCount"`
	GrandTotal     decimal.Decimal   `json:"grandTotal"`
}

// ToVersionResponse converts a domain.Version to a VersionResponse DTO
func ToVersionResponse(v *domain.Version) VersionResponse {
	return VersionResponse{
		VersionID:     v.VersionID,
		ClientID:      v.ClientID,
		Kind:          v.Kind,
		VersionNumber: v.VersionNumber,
		BoundaryAt:    v.BoundaryAt,
		Entries:       ToEntryResponses(v.Entries),
		Total:         v.Total,
		EntryCount:    v.EntryCount,
		CreatedAt:     v.CreatedAt,
	}
}

// ToVersionResponses converts a slice of domain versions to DTOs
func ToVersionResponses(versions []domain.Version) []VersionResponse {
	responses := make([]VersionResponse, len(versions))
	for i, v := range versions {
		responses[i] = ToVersionResponse(&v)
	}
	return responses
}
