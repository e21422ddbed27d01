package mapping

import (
	"github.com/atelierdecor/portal_backend/internal/core/domain"
	"github.com/atelierdecor/portal_backend/internal/models"
)

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:     d.EntryID,
		ClientID:    d.ClientID,
		Kind:        models.LedgerKind(d.Kind),
		Date:        d.Date,
		Amount:      d.Amount,
		Description: d.Description,
		Status:      models.ExpenseStatus(d.Status),
		BillURL:     d.BillURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:     m.EntryID,
		ClientID:    m.ClientID,
		Kind:        domain.LedgerKind(m.Kind),
		Date:        m.Date,
		Amount:      m.Amount,
		Description: m.Description,
		Status:      domain.ExpenseStatus(m.Status),
		BillURL:     m.BillURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToDomainLedgerEntrySlice converts a slice of model entries to domain entries
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	ds := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerEntry(m)
	}
	return ds
}

// ToDomainDiscussionState converts a model DiscussionState to a domain DiscussionState
func ToDomainDiscussionState(m models.DiscussionState) domain.DiscussionState {
	return domain.DiscussionState{
		ClientID:       m.ClientID,
		Kind:           domain.LedgerKind(m.Kind),
		Completed:      m.Completed,
		LastBoundaryAt: m.LastBoundaryAt,
		VersionCount:   m.VersionCount,
		UpdatedAt:      m.UpdatedAt,
	}
}
