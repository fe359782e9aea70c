package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/services"
)

// MonitoringHandler handles reprint monitoring requests.
type MonitoringHandler struct {
	service services.MonitoringServicer
	audit   services.AuditServicer
}

// NewMonitoringHandler creates a new MonitoringHandler.
func NewMonitoringHandler(service services.MonitoringServicer, audit services.AuditServicer) *MonitoringHandler {
	return &MonitoringHandler{service: service, audit: audit}
}

// CreateMonitoringRequest represents the payload for a monitoring record.
type CreateMonitoringRequest struct {
	Wave        string  `json:"wave" binding:"required,max=100"`
	Load        string  `json:"load" binding:"required,max=100"`
	Container   string  `json:"container" binding:"required,max=100"`
	Responsible string  `json:"responsible" binding:"required,max=255"`
	Sector      string  `json:"sector" binding:"required,max=255"`
	Note        *string `json:"note"`
}

// UpdateMonitoringRequest represents the editable fields of a monitoring record.
type UpdateMonitoringRequest struct {
	Responsible *string `json:"responsible" binding:"omitempty,max=255"`
	Sector      *string `json:"sector" binding:"omitempty,max=255"`
	Note        *string `json:"note"`
}

// Create records a monitoring check.
// @Summary     Create a monitoring record
// @Tags        monitoring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateMonitoringRequest true "Monitoring record"
// @Success     201 {object} models.MonitoringRecord
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /monitoring [post]
func (h *MonitoringHandler) Create(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMonitoringRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.service.Create(c.Request.Context(), actor, services.MonitoringInput{
		Wave:        req.Wave,
		Load:        req.Load,
		Container:   req.Container,
		Responsible: req.Responsible,
		Sector:      req.Sector,
		Note:        req.Note,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Get returns one monitoring record.
// @Summary     Get a monitoring record
// @Tags        monitoring
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Record ID"
// @Success     200 {object} models.MonitoringRecord
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /monitoring/{id} [get]
func (h *MonitoringHandler) Get(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rec, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Update edits a monitoring record owned by the caller.
// @Summary     Update a monitoring record
// @Tags        monitoring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Record ID"
// @Param       request body UpdateMonitoringRequest true "Fields to change"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /monitoring/{id} [put]
func (h *MonitoringHandler) Update(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMonitoringRequest
	if !bindJSON(c, &req) {
		return
	}

	ok, err := h.service.Update(c.Request.Context(), actor, id, services.MonitoringUpdate{
		Responsible: req.Responsible,
		Sector:      req.Sector,
		Note:        req.Note,
	})
	respondMutation(c, ok, err)
}

// Delete removes a monitoring record owned by the caller.
// @Summary     Delete a monitoring record
// @Tags        monitoring
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Record ID"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /monitoring/{id} [delete]
func (h *MonitoringHandler) Delete(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	ok, err := h.service.Delete(c.Request.Context(), actor, id)
	respondMutation(c, ok, err)
}

// List searches monitoring records.
// @Summary     List monitoring records
// @Description With field, an exact case-insensitive match on wave, load or container ("*" matches all). Otherwise by creation range.
// @Tags        monitoring
// @Produce     json
// @Security    BearerAuth
// @Param       field query string false "wave, load or container"
// @Param       value query string false "Value to match"
// @Param       start query string false "Start date (inclusive)"
// @Param       end query string false "End date (inclusive)"
// @Param       limit query int false "Maximum rows"
// @Success     200 {array} models.MonitoringRecord
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /monitoring [get]
func (h *MonitoringHandler) List(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if field := c.Query("field"); field != "" {
		recs, err := h.service.ListByField(c.Request.Context(), actor, field, c.DefaultQuery("value", services.MatchAll))
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondList(c, recs, 0)
		return
	}

	r, err := parseRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recs, err := h.service.ListByDateRange(c.Request.Context(), actor, r, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondList(c, recs, limit)
}

// Responsibles suggests responsible names for autocompletion.
// @Summary     Responsible name suggestions
// @Tags        monitoring
// @Produce     json
// @Security    BearerAuth
// @Param       prefix query string false "Name prefix"
// @Param       limit query int false "Maximum names"
// @Success     200 {array} string
// @Router      /monitoring/responsibles [get]
func (h *MonitoringHandler) Responsibles(c *gin.Context) {
	if _, err := getIdentity(c); err != nil {
		respondWithError(c, err)
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	names, err := h.service.ListResponsibles(c.Request.Context(), c.Query("prefix"), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondList(c, names, limit)
}

// Export returns every monitoring record for spreadsheet export.
// @Summary     Export monitoring records
// @Tags        monitoring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.MonitoringRecord
// @Router      /monitoring/export [get]
func (h *MonitoringHandler) Export(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recs, err := h.service.ListAll(c.Request.Context(), actor, 0)
	if err != nil {
		respondWithError(c, err)
		return
	}
	recordExport(c, h.audit, actor, services.TxMonitoring)
	respondList(c, recs, 0)
}
