package dto

import (
	"time"

	"github.com/atelierdecor/portal_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryRequest defines the data needed to create a ledger entry.
// Amount travels as a decimal string to avoid float rounding drift.
// Description, Status and Bill apply to expense entries only.
type CreateEntryRequest struct {
	Date        time.Time       `json:"date" binding:"required" time_format:"2006-01-02"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	Status      string          `json:"status" binding:"omitempty,oneof=paid pending upcoming"`
	BillURL     string          `json:"billURL"`
}

// UpdateEntryRequest defines the fields allowed for a partial entry update.
// Pointers distinguish "not provided" from zero values.
type UpdateEntryRequest struct {
	Date        *time.Time       `json:"date"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Status      *string          `json:"status" binding:"omitempty,oneof=paid pending upcoming"`
	BillURL     *string          `json:"billURL"`
}

// EntryResponse defines the data returned for a ledger entry.
type EntryResponse struct {
	EntryID     string            `json:"entryID"`
	ClientID    string            `json:"clientID"`
	Kind        domain.LedgerKind `json:"kind"`
	Date        time.Time         `json:"date"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status,omitempty"`
	BillURL     string            `json:"billURL,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// OpenLedgerResponse is the current editable ledger plus its derived totals.
type OpenLedgerResponse struct {
	Entries []EntryResponse `json:"entries"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
}

// ToEntryResponse converts a domain.LedgerEntry to an EntryResponse DTO
func ToEntryResponse(e *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		EntryID:     e.EntryID,
		ClientID:    e.ClientID,
		Kind:        e.Kind,
		Date:        e.Date,
		Amount:      e.Amount,
		Description: e.Description,
		Status:      string(e.Status),
		BillURL:     e.BillURL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToEntryResponses converts a slice of domain entries to DTOs
func ToEntryResponses(entries []domain.LedgerEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToEntryResponse(&e)
	}
	return responses
}
