package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/atelierdecor/portal_backend/internal/apperrors"
	portssvc "github.com/atelierdecor/portal_backend/internal/core/ports/services"
	"github.com/atelierdecor/portal_backend/internal/dto"
	"github.com/atelierdecor/portal_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// versionHandler handles HTTP requests for frozen versions and summaries.
type versionHandler struct {
	snapshotService portssvc.VersionSnapshotSvcFacade
	queryService    portssvc.LedgerQuerySvcFacade
}

// newVersionHandler creates a new versionHandler.
func newVersionHandler(ss portssvc.VersionSnapshotSvcFacade, qs portssvc.LedgerQuerySvcFacade) *versionHandler {
	return &versionHandler{
		snapshotService: ss,
		queryService:    qs,
	}
}

// registerVersionRoutes registers snapshot, history and summary routes.
func registerVersionRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newVersionHandler(services.Snapshot, services.Query)

	versions := rg.Group("/versions")
	{
		versions.POST("", middleware.RequireAdmin(), h.createVersion)
		versions.GET("", middleware.RequireClientScope(), h.listVersions)
	}
	rg.GET("/summary", middleware.RequireClientScope(), h.getSummary)
}

// createVersion godoc
// @Summary Freeze the open ledger into a new version
// @Description Snapshots every open-ledger entry into the next numbered immutable version and resets the open ledger
// @Tags versions
// @Produce  json
// @Param   clientID path string true "Client ID"
// @Param   kind path string true "Ledger kind" Enums(expenses, cash-receipts)
// @Success 201 {object} dto.VersionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Concurrent version creation, retry"
// @Failure 500 {object} map[string]string "Failed to create version"
// @Security BearerAuth
// @Router /clients/{clientID}/ledgers/{kind}/versions [post]
func (h *versionHandler) createVersion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("kind", string(kind)))
	logger.Info("Received request to create version")

	version, err := h.snapshotService.CreateSnapshot(c.Request.Context(), clientID, kind)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Concurrent version creation", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": "Another version is being created, please retry"})
		} else {
			logger.Error("Failed to create version in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create version"})
		}
		return
	}

	logger.Info("Version created successfully",
		slog.Int("version_number", version.VersionNumber),
		slog.Int("entry_count", version.EntryCount))
	c.JSON(http.StatusCreated, dto.ToVersionResponse(version))
}

// listVersions godoc
// @Summary List the version history
// @Description Returns every frozen version for the ledger, ascending by version number
// @Tags versions
// @Produce  json
// @Param   clientID path string true "Client ID"
// @Param   kind path string true "Ledger kind" Enums(expenses, cash-receipts)
// @Success 200 {object} dto.HistoryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another client's ledger)"
// @Failure 500 {object} map[string]string "Failed to list versions"
// @Security BearerAuth
// @Router /clients/{clientID}/ledgers/{kind}/versions [get]
func (h *versionHandler) listVersions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("kind", string(kind)))

	versions, err := h.queryService.GetHistory(c.Request.Context(), clientID, kind)
	if err != nil {
		logger.Error("Failed to list versions from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list versions"})
		return
	}

	logger.Info("Version history listed successfully", slog.Int("count", len(versions)))
	c.JSON(http.StatusOK, dto.HistoryResponse{Versions: dto.ToVersionResponses(versions)})
}

// getSummary godoc
// @Summary Get the ledger summary
// @Description Returns derived totals over the open ledger and the frozen history
// @Tags versions
// @Produce  json
// @Param   clientID path string true "Client ID"
// @Param   kind path string true "Ledger kind" Enums(expenses, cash-receipts)
// @Success 200 {object} dto.LedgerSummaryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another client's ledger)"
// @Failure 500 {object} map[string]string "Failed to compute summary"
// @Security BearerAuth
// @Router /clients/{clientID}/ledgers/{kind}/summary [get]
func (h *versionHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("client_id", clientID), slog.String("kind", string(kind)))

	summary, err := h.queryService.GetLedgerSummary(c.Request.Context(), clientID, kind)
	if err != nil {
		logger.Error("Failed to compute summary in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	logger.Info("Summary computed successfully")
	c.JSON(http.StatusOK, summary)
}
