package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stockdesk/internal/services"
)

// PPEHandler handles protective-equipment issue requests.
type PPEHandler struct {
	service services.PPEServicer
	audit   services.AuditServicer
}

// NewPPEHandler creates a new PPEHandler.
func NewPPEHandler(service services.PPEServicer, audit services.AuditServicer) *PPEHandler {
	return &PPEHandler{service: service, audit: audit}
}

// PPEItemRequest is one line of a PPE issue. Description and unit price are
// filled from the catalog when omitted.
type PPEItemRequest struct {
	Code        string              `json:"code"`
	Description string              `json:"description"`
	Quantity    int64               `json:"quantity"`
	Unit        string              `json:"unit"`
	UnitPrice   decimal.NullDecimal `json:"unit_price" swaggertype:"number"`
	LineTotal   decimal.NullDecimal `json:"line_total" swaggertype:"number"`
}

// CreatePPERequest represents a PPE issue with its lines.
type CreatePPERequest struct {
	Badge         int64            `json:"badge" binding:"required,gt=0"`
	Sector        string           `json:"sector" binding:"required,max=255"`
	Shift         string           `json:"shift" binding:"required,shift"`
	FirstIssue    bool             `json:"first_issue"`
	ReferenceDate string           `json:"reference_date" binding:"required"`
	ApproverBadge int64            `json:"approver_badge" binding:"required,gt=0"`
	Note          *string          `json:"note"`
	Items         []PPEItemRequest `json:"items" binding:"required,min=1"`
}

// UpdatePPERequest represents the editable header fields of a PPE issue.
type UpdatePPERequest struct {
	Sector        *string `json:"sector" binding:"omitempty,max=255"`
	Shift         *string `json:"shift" binding:"omitempty,shift"`
	FirstIssue    *bool   `json:"first_issue"`
	ReferenceDate *string `json:"reference_date"`
	ApproverBadge *int64  `json:"approver_badge" binding:"omitempty,gt=0"`
	Note          *string `json:"note"`
}

// Create records a PPE issue and its lines.
// @Summary     Create a PPE issue
// @Tags        ppe
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePPERequest true "PPE issue"
// @Success     201 {object} models.PPEIssue
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /ppe [post]
func (h *PPEHandler) Create(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePPERequest
	if !bindJSON(c, &req) {
		return
	}
	refDate, err := parseDate(req.ReferenceDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	items := make([]services.PPEItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.PPEItemInput{
			Code:        it.Code,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}

	issue, err := h.service.Create(c.Request.Context(), actor, services.PPEIssueInput{
		Badge:         req.Badge,
		Sector:        req.Sector,
		Shift:         req.Shift,
		FirstIssue:    req.FirstIssue,
		ReferenceDate: refDate,
		ApproverBadge: req.ApproverBadge,
		Note:          req.Note,
		Items:         items,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

// Get returns one PPE issue with its lines.
// @Summary     Get a PPE issue
// @Tags        ppe
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Issue ID"
// @Success     200 {object} models.PPEIssue
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /ppe/{id} [get]
func (h *PPEHandler) Get(c *gin.Context) {
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

	issue, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// Update edits the header of a PPE issue owned by the caller.
// @Summary     Update a PPE issue
// @Tags        ppe
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Issue ID"
// @Param       request body UpdatePPERequest true "Fields to change"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /ppe/{id} [put]
func (h *PPEHandler) Update(c *gin.Context) {
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

	var req UpdatePPERequest
	if !bindJSON(c, &req) {
		return
	}
	refDate, err := parseOptionalDate(req.ReferenceDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ok, err := h.service.Update(c.Request.Context(), actor, id, services.PPEIssueUpdate{
		Sector:        req.Sector,
		Shift:         req.Shift,
		FirstIssue:    req.FirstIssue,
		ReferenceDate: refDate,
		ApproverBadge: req.ApproverBadge,
		Note:          req.Note,
	})
	respondMutation(c, ok, err)
}

// Delete removes a PPE issue and its lines.
// @Summary     Delete a PPE issue
// @Tags        ppe
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Issue ID"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /ppe/{id} [delete]
func (h *PPEHandler) Delete(c *gin.Context) {
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

// List returns PPE issue summaries by reference period, optionally for one badge.
// @Summary     List PPE issues
// @Tags        ppe
// @Produce     json
// @Security    BearerAuth
// @Param       badge query int false "Employee badge"
// @Param       start query string false "Start date (inclusive)"
// @Param       end query string false "End date (inclusive)"
// @Success     200 {array} models.PPEIssueSummary
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /ppe [get]
func (h *PPEHandler) List(c *gin.Context) {
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

	if raw := c.Query("badge"); raw != "" {
		badge, err := parseInt64Param(raw, "badge")
		if err != nil {
			respondWithError(c, err)
			return
		}
		rows, err := h.service.ListByBadge(c.Request.Context(), actor, badge, r)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondList(c, rows, 0)
		return
	}

	rows, err := h.service.ListByPeriod(c.Request.Context(), actor, r)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondList(c, rows, 0)
}

// Items returns the lines of a PPE issue.
// @Summary     List the lines of a PPE issue
// @Tags        ppe
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Issue ID"
// @Success     200 {array} models.PPEItem
// @Router      /ppe/{id}/items [get]
func (h *PPEHandler) Items(c *gin.Context) {
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

	items, err := h.service.ListItems(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondList(c, items, 0)
}

// Export returns every PPE issue with its lines for spreadsheet export.
// @Summary     Export PPE issues
// @Tags        ppe
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.PPEIssue
// @Router      /ppe/export [get]
func (h *PPEHandler) Export(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.service.ListAll(c.Request.Context(), actor, 0)
	if err != nil {
		respondWithError(c, err)
		return
	}
	recordExport(c, h.audit, actor, services.TxPPE)
	respondList(c, rows, 0)
}
