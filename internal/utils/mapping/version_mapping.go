package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/atelierdecor/portal_backend/internal/core/domain"
	"github.com/atelierdecor/portal_backend/internal/models"
)

// ToModelVersion converts a domain Version to a model Version, marshalling the
// frozen entries into the JSON snapshot payload.
func ToModelVersion(d domain.Version) (models.Version, error) {
	data, err := json.Marshal(d.Entries)
	if err != nil {
		return models.Version{}, fmt.Errorf("failed to marshal version entries: %w", err)
	}
	return models.Version{
		VersionID:     d.VersionID,
		ClientID:      d.ClientID,
		Kind:          models.LedgerKind(d.Kind),
		VersionNumber: d.VersionNumber,
		BoundaryAt:    d.BoundaryAt,
		EntriesData:   data,
		Total:         d.Total,
		EntryCount:    d.EntryCount,
		CreatedAt:     d.CreatedAt,
	}, nil
}

// ToDomainVersion converts a model Version to a domain Version, unmarshalling
// the JSON snapshot payload back into entries.
func ToDomainVersion(m models.Version) (domain.Version, error) {
	var entries []domain.LedgerEntry
	if len(m.EntriesData) > 0 {
		if err := json.Unmarshal(m.EntriesData, &entries); err != nil {
			return domain.Version{}, fmt.Errorf("failed to unmarshal entries for version %s: %w", m.VersionID, err)
		}
	}
	return domain.Version{
		VersionID:     m.VersionID,
		ClientID:      m.ClientID,
		Kind:          domain.LedgerKind(m.Kind),
		VersionNumber: m.VersionNumber,
		BoundaryAt:    m.BoundaryAt,
		Entries:       entries,
		Total:         m.Total,
		EntryCount:    m.EntryCount,
		CreatedAt:     m.CreatedAt,
	}, nil
}
