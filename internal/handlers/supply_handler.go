package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/services"
)

// SupplyHandler handles supply-room withdrawal requests.
type SupplyHandler struct {
	service services.SupplyServicer
	audit   services.AuditServicer
}

// NewSupplyHandler creates a new SupplyHandler.
func NewSupplyHandler(service services.SupplyServicer, audit services.AuditServicer) *SupplyHandler {
	return &SupplyHandler{service: service, audit: audit}
}

// CreateSupplyRequest represents the payload for a withdrawal.
type CreateSupplyRequest struct {
	Sector      string  `json:"sector" binding:"required,max=255"`
	Shift       string  `json:"shift" binding:"required,shift"`
	Badge       int64   `json:"badge" binding:"required,gt=0"`
	Responsible string  `json:"responsible" binding:"required,max=255"`
	Supply      string  `json:"supply" binding:"required,max=100"`
	Quantity    int64   `json:"quantity" binding:"required,gt=0"`
	Note        *string `json:"note"`
}

// UpdateSupplyRequest represents the editable fields of a withdrawal.
type UpdateSupplyRequest struct {
	Sector      *string `json:"sector" binding:"omitempty,max=255"`
	Shift       *string `json:"shift" binding:"omitempty,shift"`
	Badge       *int64  `json:"badge" binding:"omitempty,gt=0"`
	Responsible *string `json:"responsible" binding:"omitempty,max=255"`
	Supply      *string `json:"supply" binding:"omitempty,max=100"`
	Quantity    *int64  `json:"quantity" binding:"omitempty,gt=0"`
	Note        *string `json:"note"`
}

// Create records a withdrawal.
// @Summary     Create a supply withdrawal
// @Tags        supplies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSupplyRequest true "Withdrawal"
// @Success     201 {object} models.SupplyWithdrawal
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /supplies [post]
func (h *SupplyHandler) Create(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSupplyRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.service.Create(c.Request.Context(), actor, services.SupplyInput{
		Sector:      req.Sector,
		Shift:       req.Shift,
		Badge:       req.Badge,
		Responsible: req.Responsible,
		Supply:      req.Supply,
		Quantity:    req.Quantity,
		Note:        req.Note,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Get returns one withdrawal.
// @Summary     Get a supply withdrawal
// @Tags        supplies
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Withdrawal ID"
// @Success     200 {object} models.SupplyWithdrawal
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /supplies/{id} [get]
func (h *SupplyHandler) Get(c *gin.Context) {
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

// Update edits a withdrawal owned by the caller.
// @Summary     Update a supply withdrawal
// @Tags        supplies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Withdrawal ID"
// @Param       request body UpdateSupplyRequest true "Fields to change"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /supplies/{id} [put]
func (h *SupplyHandler) Update(c *gin.Context) {
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

	var req UpdateSupplyRequest
	if !bindJSON(c, &req) {
		return
	}

	ok, err := h.service.Update(c.Request.Context(), actor, id, services.SupplyUpdate{
		Sector:      req.Sector,
		Shift:       req.Shift,
		Badge:       req.Badge,
		Responsible: req.Responsible,
		Supply:      req.Supply,
		Quantity:    req.Quantity,
		Note:        req.Note,
	})
	respondMutation(c, ok, err)
}

// Delete removes a withdrawal owned by the caller.
// @Summary     Delete a supply withdrawal
// @Tags        supplies
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Withdrawal ID"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /supplies/{id} [delete]
func (h *SupplyHandler) Delete(c *gin.Context) {
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

// List searches withdrawals.
// @Summary     List supply withdrawals
// @Tags        supplies
// @Produce     json
// @Security    BearerAuth
// @Param       shift query string false "1° Turno or 2° Turno"
// @Param       start query string false "Start date (inclusive)"
// @Param       end query string false "End date (inclusive)"
// @Param       limit query int false "Maximum rows"
// @Success     200 {array} models.SupplyWithdrawal
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /supplies [get]
func (h *SupplyHandler) List(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
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

	recs, err := h.service.List(c.Request.Context(), actor, c.Query("shift"), r, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondList(c, recs, limit)
}

// Export returns every withdrawal for spreadsheet export.
// @Summary     Export supply withdrawals
// @Tags        supplies
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.SupplyWithdrawal
// @Router      /supplies/export [get]
func (h *SupplyHandler) Export(c *gin.Context) {
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
	recordExport(c, h.audit, actor, services.TxSupplyRoom)
	respondList(c, recs, 0)
}
