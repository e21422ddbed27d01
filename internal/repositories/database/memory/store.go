package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atelierdecor/portal_backend/internal/apperrors"
	"github.com/atelierdecor/portal_backend/internal/core/domain"
	portsrepo "github.com/atelierdecor/portal_backend/internal/core/ports/repositories"
)

// ledgerKey scopes data and locks to one (client, kind) ledger.
type ledgerKey struct {
	clientID string
	kind     domain.LedgerKind
}

// LedgerStore is an in-memory implementation of the ledger repository. It
// backs the service tests and DB-less local runs. A per-(client, kind) lock
// table provides the same snapshot/edit serialization the Postgres
// implementation gets from its row lock.
type LedgerStore struct {
	mu       sync.RWMutex
	entries  map[string]domain.LedgerEntry
	versions map[ledgerKey][]domain.Version
	states   map[ledgerKey]domain.DiscussionState

	lockMu sync.Mutex
	locks  map[ledgerKey]*sync.Mutex
}

// NewLedgerStore creates an empty in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		entries:  make(map[string]domain.LedgerEntry),
		versions: make(map[ledgerKey][]domain.Version),
		states:   make(map[ledgerKey]domain.DiscussionState),
		locks:    make(map[ledgerKey]*sync.Mutex),
	}
}

// Ensure LedgerStore implements portsrepo.LedgerRepositoryWithLock
var _ portsrepo.LedgerRepositoryWithLock = (*LedgerStore)(nil)

// ledgerLock returns the mutex for one (client, kind) ledger, creating it on
// first use.
func (s *LedgerStore) ledgerLock(key ledgerKey) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// WithLedgerLock serializes fn against every other locked section for the same
// (client, kind).
func (s *LedgerStore) WithLedgerLock(ctx context.Context, clientID string, kind domain.LedgerKind, fn func(repo portsrepo.LedgerRepositoryFacade) error) error {
	l := s.ledgerLock(ledgerKey{clientID, kind})
	l.Lock()
	defer l.Unlock()
	return fn(s)
}

// SaveEntry stores a new entry.
func (s *LedgerStore) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.EntryID]; exists {
		return apperrors.ErrDuplicate
	}
	s.entries[entry.EntryID] = entry
	return nil
}

// FindEntryByID returns a copy of the entry.
func (s *LedgerStore) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[entryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &entry, nil
}

// ListEntries returns all entries for the ledger ordered by date, then
// creation time.
func (s *LedgerStore) ListEntries(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.LedgerEntry, error) {
	return s.ListEntriesAfter(ctx, clientID, kind, nil)
}

// ListEntriesAfter returns entries created strictly after the boundary, or all
// entries when the boundary is nil.
func (s *LedgerStore) ListEntriesAfter(ctx context.Context, clientID string, kind domain.LedgerKind, after *time.Time) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.LedgerEntry{}
	for _, e := range s.entries {
		if e.ClientID != clientID || e.Kind != kind {
			continue
		}
		if after != nil && !e.CreatedAt.After(*after) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateEntry overwrites an existing entry.
func (s *LedgerStore) UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.EntryID]; !ok {
		return apperrors.ErrNotFound
	}
	s.entries[entry.EntryID] = entry
	return nil
}

// DeleteEntry removes an entry.
func (s *LedgerStore) DeleteEntry(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entryID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.entries, entryID)
	return nil
}

// SaveVersion appends a frozen snapshot, rejecting duplicate version numbers.
func (s *LedgerStore) SaveVersion(ctx context.Context, version domain.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ledgerKey{version.ClientID, version.Kind}
	for _, v := range s.versions[key] {
		if v.VersionNumber == version.VersionNumber {
			return apperrors.ErrDuplicate
		}
	}

	// Own the snapshot: later edits to live entries must never reach it.
	stored := version
	stored.Entries = make([]domain.LedgerEntry, len(version.Entries))
	copy(stored.Entries, version.Entries)
	s.versions[key] = append(s.versions[key], stored)
	return nil
}

// ListVersions returns the snapshots ascending by version number, each with
// its own entry copies.
func (s *LedgerStore) ListVersions(ctx context.Context, clientID string, kind domain.LedgerKind) ([]domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.versions[ledgerKey{clientID, kind}]
	result := make([]domain.Version, len(stored))
	for i, v := range stored {
		copied := v
		copied.Entries = make([]domain.LedgerEntry, len(v.Entries))
		copy(copied.Entries, v.Entries)
		result[i] = copied
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].VersionNumber < result[j].VersionNumber
	})
	return result, nil
}

// GetDiscussionState returns the tracker, or the implicit zero state.
func (s *LedgerStore) GetDiscussionState(ctx context.Context, clientID string, kind domain.LedgerKind) (*domain.DiscussionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[ledgerKey{clientID, kind}]
	if !ok {
		state = domain.NewDiscussionState(clientID, kind)
	}
	return &state, nil
}

// AdvanceDiscussionState marks the discussion completed and moves the
// boundary forward.
func (s *LedgerStore) AdvanceDiscussionState(ctx context.Context, clientID string, kind domain.LedgerKind, boundaryAt time.Time) (*domain.DiscussionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ledgerKey{clientID, kind}
	state, ok := s.states[key]
	if !ok {
		state = domain.NewDiscussionState(clientID, kind)
	}
	boundary := boundaryAt
	state.Completed = true
	state.LastBoundaryAt = &boundary
	state.VersionCount++
	state.UpdatedAt = boundaryAt
	s.states[key] = state
	return &state, nil
}
