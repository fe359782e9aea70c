package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/services"
)

// MirrorSyncer copies the database to its mirror target on demand.
type MirrorSyncer interface {
	Sync(ctx context.Context) error
}

// DeskHandler serves desk-wide reference data, the audit trail and maintenance.
type DeskHandler struct {
	sectors      []string
	auditService services.AuditServicer
	mirror       MirrorSyncer
}

// NewDeskHandler creates a new DeskHandler. mirror may be nil when no mirror is configured.
func NewDeskHandler(sectors []string, auditService services.AuditServicer, mirror MirrorSyncer) *DeskHandler {
	return &DeskHandler{sectors: sectors, auditService: auditService, mirror: mirror}
}

// ListSectors returns the configured sector names.
// @Summary     List sectors
// @Tags        desk
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} string
// @Router      /sectors [get]
func (h *DeskHandler) ListSectors(c *gin.Context) {
	respondList(c, h.sectors, 0)
}

// ListAudit returns the most recent audit entries.
// @Summary     Recent audit entries
// @Description Most recent first. The default limit is 10.
// @Tags        desk
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Maximum entries"
// @Success     200 {array} models.AuditLog
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /audit [get]
func (h *DeskHandler) ListAudit(c *gin.Context) {
	limit := services.DefaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := parseInt64Param(raw, "limit")
		if err != nil || v <= 0 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid limit"))
			return
		}
		limit = int(v)
	}

	entries, err := h.auditService.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondList(c, entries, limit)
}

// SyncMirror copies the database to the mirror target immediately.
// @Summary     Force a mirror copy
// @Tags        maintenance
// @Produce     json
// @Param       X-API-Key header string true "Maintenance key"
// @Success     200 {object} SuccessResponse
// @Failure     409 {object} ErrorResponse "No mirror configured"
// @Router      /maintenance/mirror [post]
func (h *DeskHandler) SyncMirror(c *gin.Context) {
	if h.mirror == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "No mirror is configured"))
		return
	}
	if err := h.mirror.Sync(c.Request.Context()); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrStorageUnavailable, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
