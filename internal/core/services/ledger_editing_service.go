package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierdecor/portal_backend/internal/apperrors"
	"github.com/atelierdecor/portal_backend/internal/core/domain"
	portsrepo "github.com/atelierdecor/portal_backend/internal/core/ports/repositories"
	portssvc "github.com/atelierdecor/portal_backend/internal/core/ports/services"
	"github.com/atelierdecor/portal_backend/internal/dto"
	"github.com/atelierdecor/portal_backend/internal/middleware"
)

var (
	ErrAmountNotPositive  = errors.New("entry amount must be strictly positive")
	ErrAmountPrecision    = errors.New("entry amount must have at most two fractional digits")
	ErrDescriptionMissing = errors.New("expense entries require a description")
	ErrStatusInvalid      = errors.New("expense status must be paid, pending or upcoming")
	ErrReceiptExtraFields = errors.New("cash receipt entries carry only a date and an amount")
)

// ledgerEditingService provides create/update/delete for ledger entries.
// Every mutation runs under the per-(client, kind) ledger lock so it
// serializes against concurrent snapshots.
type ledgerEditingService struct {
	repo portsrepo.LedgerRepositoryWithLock
}

// NewLedgerEditingService creates a new LedgerEditingService.
func NewLedgerEditingService(repo portsrepo.LedgerRepositoryWithLock) portssvc.LedgerEditingSvcFacade {
	return &ledgerEditingService{repo: repo}
}

// Ensure ledgerEditingService implements the portssvc.LedgerEditingSvcFacade interface
var _ portssvc.LedgerEditingSvcFacade = (*ledgerEditingService)(nil)

// validateAmount checks the shared amount invariant: strictly positive, at
// most two fractional digits.
func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrAmountNotPositive)
	}
	if !amount.Round(2).Equal(amount) {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrAmountPrecision)
	}
	return nil
}

// validateVariantFields enforces the kind-specific field requirements:
// expenses need a description and a valid status, cash receipts must not
// carry expense-only fields.
func validateVariantFields(kind domain.LedgerKind, description string, status domain.ExpenseStatus, billURL string) error {
	switch kind {
	case domain.KindExpense:
		if description == "" {
			return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrDescriptionMissing)
		}
		if !domain.ValidExpenseStatus(status) {
			return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrStatusInvalid)
		}
	case domain.KindCashReceipt:
		if description != "" || status != "" || billURL != "" {
			return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrReceiptExtraFields)
		}
	default:
		return fmt.Errorf("%w: unknown ledger kind %q", apperrors.ErrValidation, kind)
	}
	return nil
}

// CreateEntry validates and persists a new entry. The creation timestamp is
// assigned under the ledger lock, so the entry always lands strictly after the
// last freeze boundary, i.e. in the open ledger.
func (s *ledgerEditingService) CreateEntry(ctx context.Context, clientID string, kind domain.LedgerKind, req dto.CreateEntryRequest) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := validateVariantFields(kind, req.Description, domain.ExpenseStatus(req.Status), req.BillURL); err != nil {
		return nil, err
	}

	var entry domain.LedgerEntry
	err := s.repo.WithLedgerLock(ctx, clientID, kind, func(repo portsrepo.LedgerRepositoryFacade) error {
		now := time.Now().UTC()
		entry = domain.LedgerEntry{
			EntryID:     uuid.NewString(),
			ClientID:    clientID,
			Kind:        kind,
			Date:        req.Date,
			Amount:      req.Amount,
			Description: req.Description,
			Status:      domain.ExpenseStatus(req.Status),
			BillURL:     req.BillURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return repo.SaveEntry(ctx, entry)
	})
	if err != nil {
		logger.Error("Failed to save ledger entry", slog.String("error", err.Error()), slog.String("client_id", clientID), slog.String("kind", string(kind)))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	logger.Info("Ledger entry created", slog.String("entry_id", entry.EntryID), slog.String("client_id", clientID), slog.String("kind", string(kind)))
	return &entry, nil
}

// loadOpenEntry fetches the entry, verifies it belongs to (clientID, kind) and
// rejects it with ErrImmutableRecord when it falls at or before the freeze
// boundary. Must be called with the ledger lock held.
func (s *ledgerEditingService) loadOpenEntry(ctx context.Context, repo portsrepo.LedgerRepositoryFacade, clientID string, kind domain.LedgerKind, entryID string) (*domain.LedgerEntry, error) {
	entry, err := repo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.ClientID != clientID || entry.Kind != kind {
		// Obscure existence of entries in other ledgers.
		return nil, apperrors.ErrNotFound
	}

	state, err := repo.GetDiscussionState(ctx, clientID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to read discussion state: %w", err)
	}
	if entry.Frozen(state.LastBoundaryAt) {
		return nil, fmt.Errorf("%w: entry %s belongs to version history", apperrors.ErrImmutableRecord, entryID)
	}
	return entry, nil
}

// UpdateEntry applies a partial update to an open-ledger entry. Entries frozen
// into a version fail with ErrImmutableRecord.
func (s *ledgerEditingService) UpdateEntry(ctx context.Context, clientID string, kind domain.LedgerKind, entryID string, req dto.UpdateEntryRequest) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var updated domain.LedgerEntry
	err := s.repo.WithLedgerLock(ctx, clientID, kind, func(repo portsrepo.LedgerRepositoryFacade) error {
		entry, err := s.loadOpenEntry(ctx, repo, clientID, kind, entryID)
		if err != nil {
			return err
		}

		changed := false
		if req.Date != nil {
			entry.Date = *req.Date
			changed = true
		}
		if req.Amount != nil {
			if err := validateAmount(*req.Amount); err != nil {
				return err
			}
			entry.Amount = *req.Amount
			changed = true
		}
		if req.Description != nil {
			entry.Description = *req.Description
			changed = true
		}
		if req.Status != nil {
			entry.Status = domain.ExpenseStatus(*req.Status)
			changed = true
		}
		if req.BillURL != nil {
			entry.BillURL = *req.BillURL
			changed = true
		}

		if changed {
			if err := validateVariantFields(kind, entry.Description, entry.Status, entry.BillURL); err != nil {
				return err
			}
			entry.UpdatedAt = time.Now().UTC()
			if err := repo.UpdateEntry(ctx, *entry); err != nil {
				return fmt.Errorf("failed to save entry update: %w", err)
			}
		}

		updated = *entry
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrImmutableRecord) {
			logger.Warn("Rejected update of frozen entry", slog.String("entry_id", entryID), slog.String("client_id", clientID))
		} else if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			logger.Error("Failed to update ledger entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}

	logger.Info("Ledger entry updated", slog.String("entry_id", entryID), slog.String("client_id", clientID))
	return &updated, nil
}

// DeleteEntry removes an open-ledger entry. Frozen entries are never
// deletable: they persist inside their version's snapshot copy, and the guard
// protects the live row from silent tampering with history.
func (s *ledgerEditingService) DeleteEntry(ctx context.Context, clientID string, kind domain.LedgerKind, entryID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	err := s.repo.WithLedgerLock(ctx, clientID, kind, func(repo portsrepo.LedgerRepositoryFacade) error {
		if _, err := s.loadOpenEntry(ctx, repo, clientID, kind, entryID); err != nil {
			return err
		}
		return repo.DeleteEntry(ctx, entryID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrImmutableRecord) {
			logger.Warn("Rejected delete of frozen entry", slog.String("entry_id", entryID), slog.String("client_id", clientID))
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to delete ledger entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return err
	}

	logger.Info("Ledger entry deleted", slog.String("entry_id", entryID), slog.String("client_id", clientID))
	return nil
}
