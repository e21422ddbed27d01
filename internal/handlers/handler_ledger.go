package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/atelierdecor/portal_backend/internal/apperrors"
	"github.com/atelierdecor/portal_backend/internal/core/domain"
	portssvc "github.com/atelierdecor/portal_backend/internal/core/ports/services"
	"github.com/atelierdecor/portal_backend/internal/dto"
	"github.com/atelierdecor/portal_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for open-ledger entries.
type ledgerHandler struct {
	editingService portssvc.LedgerEditingSvcFacade
	queryService   portssvc.LedgerQuerySvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(es portssvc.LedgerEditingSvcFacade, qs portssvc.LedgerQuerySvcFacade) *ledgerHandler {
	return &ledgerHandler{
		editingService: es,
		queryService:   qs,
	}
}

// registerLedgerRoutes registers entry CRUD and open-ledger routes.
func registerLedgerRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newLedgerHandler(services.Editing, services.Query)

	entries := rg.Group("/entries")
	{
		entries.GET("", middleware.RequireClientScope(), h.listOpenEntries)
		entries.POST("", middleware.RequireAdmin(), h.createEntry)
		entries.PATCH("/:entryID", middleware.RequireAdmin(), h.updateEntry)
		entries.DELETE("/:entryID", middleware.RequireAdmin(), h.deleteEntry)
	}
}

// kindFromParam maps the URL segment to a ledger kind. The URL uses the
// plural portal spellings, not the storage enum.
func kindFromParam(c *gin.Context) (domain.LedgerKind, bool) {
	switch c.Param("kind") {
	case "expenses":
		return domain.KindExpense, true
	case "cash-receipts":
		return domain.KindCashReceipt, true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown ledger kind, expected 'expenses' or 'cash-receipts'"})
		return "", false
	}
}

// createEntry godoc
// @Summary Create a ledger entry
// @Description Adds a new entry to the client's open ledger
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   clientID path string true "Client ID"
// @Param   kind path string true "Ledger kind" Enums(expenses, cash-receipts)
// @Param   entry body dto.CreateEntryRequest true "Entry details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Concurrent modification, retry"
// @Failure 500 {object} map[string]string "Failed to create entry"
// @Security BearerAuth
// @Router /clients/{clientID}/ledgers/{kind}/entries [post]
func (h *ledgerHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("kind", string(kind)))
	logger.Info("Received request to create entry", slog.String("amount", req.Amount.String()))

	entry, err := h.editingService.CreateEntry(c.Request.Context(), clientID, kind, req)
	if err != nil {
		h.respondEntryError(c, logger, err, "create")
		return
	}

	logger.Info("Entry created successfully", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// listOpenEntries godoc
// @Summary List the open ledger
// @Description Returns the editable entries recorded since the last version boundary, with derived totals
// @Tags ledger
// @Produce  json
// @Param   clientID path string true "Client ID"
// @Param   kind path string true "Ledger kind" Enums(expenses, cash-receipts)
// @Success 200 {object} dto.OpenLedgerResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another client's ledger)"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Security BearerAuth
// @Router /clients/{clientID}/ledgers/{kind}/entries [get]
func (h *ledgerHandler) listOpenEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("kind", string(kind)))

	entries, err := h.queryService.GetOpenLedger(c.Request.Context(), clientID, kind)
	if err != nil {
		logger.Error("Failed to list open entries from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}

	total := domain.SumEntries(entries)
	logger.Info("Open ledger listed successfully", slog.Int("count", len(entries)))
	c.JSON(http.StatusOK, dto.OpenLedgerResponse{
		Entries: dto.ToEntryResponses(entries),
		Total:   total,
		Count:   len(entries),
	})
}

// updateEntry godoc
// @Summary Update a ledger entry
// @Description Applies a partial update to an open-ledger entry. Entries frozen into a version are rejected.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   clientID path string true "Client ID"
// @Param   kind path string true "Ledger kind" Enums(expenses, cash-receipts)
// @Param   entryID path string true "Entry ID"
// @Param   entry body dto.UpdateEntryRequest true "Fields to update"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is part of a frozen version"
// @Failure 500 {object} map[string]string "Failed to update entry"
// @Security BearerAuth
// @Router /clients/{clientID}/ledgers/{kind}/entries/{entryID} [patch]
func (h *ledgerHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")
	entryID := c.Param("entryID")
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("kind", string(kind)), slog.String("entry_id", entryID))
	logger.Info("Received request to update entry")

	entry, err := h.editingService.UpdateEntry(c.Request.Context(), clientID, kind, entryID, req)
	if err != nil {
		h.respondEntryError(c, logger, err, "update")
		return
	}

	logger.Info("Entry updated successfully")
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete a ledger entry
// @Description Removes an open-ledger entry. Entries frozen into a version are rejected.
// @Tags ledger
// @Produce  json
// @Param   clientID path string true "Client ID"
// @Param   kind path string true "Ledger kind" Enums(expenses, cash-receipts)
// @Param   entryID path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is part of a frozen version"
// @Failure 500 {object} map[string]string "Failed to delete entry"
// @Security BearerAuth
// @Router /clients/{clientID}/ledgers/{kind}/entries/{entryID} [delete]
func (h *ledgerHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")
	entryID := c.Param("entryID")
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("kind", string(kind)), slog.String("entry_id", entryID))
	logger.Info("Received request to delete entry")

	if err := h.editingService.DeleteEntry(c.Request.Context(), clientID, kind, entryID); err != nil {
		h.respondEntryError(c, logger, err, "delete")
		return
	}

	logger.Info("Entry deleted successfully")
	c.Status(http.StatusNoContent)
}

// respondEntryError maps service errors onto HTTP responses the same way for
// every entry mutation.
func (h *ledgerHandler) respondEntryError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error on entry "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Entry not found for " + action)
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
	case errors.Is(err, apperrors.ErrImmutableRecord):
		logger.Warn("Attempt to "+action+" frozen entry", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": "Entry belongs to a frozen version and can no longer change"})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Concurrent modification on entry "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": "Concurrent modification, please retry"})
	default:
		logger.Error("Failed to "+action+" entry in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " entry"})
	}
}
