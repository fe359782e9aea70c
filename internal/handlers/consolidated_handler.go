package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stockdesk/internal/services"
)

// ConsolidatedHandler handles daily consolidated-stock snapshots.
type ConsolidatedHandler struct {
	service services.ConsolidatedServicer
}

// NewConsolidatedHandler creates a new ConsolidatedHandler.
func NewConsolidatedHandler(service services.ConsolidatedServicer) *ConsolidatedHandler {
	return &ConsolidatedHandler{service: service}
}

// ConsolidatedLineRequest is one branch row of a snapshot. Every column is optional.
type ConsolidatedLineRequest struct {
	Warehouse            *int64              `json:"warehouse"`
	BranchDescription    *string             `json:"branch_description"`
	StockValue           decimal.NullDecimal `json:"stock_value" swaggertype:"number"`
	MixItems             *int64              `json:"mix_items"`
	ItemsWithStock       *int64              `json:"items_with_stock"`
	ItemsWithoutStock    *int64              `json:"items_without_stock"`
	BlockedTotal         decimal.NullDecimal `json:"blocked_total" swaggertype:"number"`
	BlockedInStock       decimal.NullDecimal `json:"blocked_in_stock" swaggertype:"number"`
	BlockedInNegotiation decimal.NullDecimal `json:"blocked_in_negotiation" swaggertype:"number"`
	BlockedBalance       decimal.NullDecimal `json:"blocked_balance" swaggertype:"number"`
	PctItemsWithStock    decimal.NullDecimal `json:"pct_items_with_stock" swaggertype:"number"`
}

// InsertConsolidatedRequest carries a snapshot for one reference date.
type InsertConsolidatedRequest struct {
	ReferenceDate string                    `json:"reference_date" binding:"required"`
	Replace       bool                      `json:"replace"`
	Lines         []ConsolidatedLineRequest `json:"lines" binding:"required,min=1"`
}

func (r ConsolidatedLineRequest) input() services.ConsolidatedInput {
	return services.ConsolidatedInput{
		Warehouse:            r.Warehouse,
		BranchDescription:    r.BranchDescription,
		StockValue:           r.StockValue,
		MixItems:             r.MixItems,
		ItemsWithStock:       r.ItemsWithStock,
		ItemsWithoutStock:    r.ItemsWithoutStock,
		BlockedTotal:         r.BlockedTotal,
		BlockedInStock:       r.BlockedInStock,
		BlockedInNegotiation: r.BlockedInNegotiation,
		BlockedBalance:       r.BlockedBalance,
		PctItemsWithStock:    r.PctItemsWithStock,
	}
}

// Insert stores a snapshot, replacing the date's existing rows when replace is set.
// @Summary     Insert a consolidated snapshot
// @Tags        consolidated
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body InsertConsolidatedRequest true "Snapshot"
// @Success     201 {object} map[string]int "inserted row count"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /consolidated [post]
func (h *ConsolidatedHandler) Insert(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InsertConsolidatedRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parseDate(req.ReferenceDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	lines := make([]services.ConsolidatedInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, l.input())
	}

	var n int
	if req.Replace {
		n, err = h.service.ReplaceForDate(c.Request.Context(), actor, date, lines)
	} else {
		n, err = h.service.Insert(c.Request.Context(), actor, date, lines)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inserted": n})
}

// Exists reports whether a snapshot is stored for a date.
// @Summary     Check for a snapshot
// @Tags        consolidated
// @Produce     json
// @Security    BearerAuth
// @Param       date query string true "Reference date"
// @Success     200 {object} map[string]bool
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Router      /consolidated/exists [get]
func (h *ConsolidatedHandler) Exists(c *gin.Context) {
	if _, err := getIdentity(c); err != nil {
		respondWithError(c, err)
		return
	}
	date, err := parseDate(c.Query("date"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	exists, err := h.service.ExistsForDate(c.Request.Context(), date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// List returns snapshot rows by reference-date range.
// @Summary     List consolidated rows
// @Tags        consolidated
// @Produce     json
// @Security    BearerAuth
// @Param       start query string false "Start date (inclusive)"
// @Param       end query string false "End date (inclusive)"
// @Success     200 {array} models.ConsolidatedLine
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /consolidated [get]
func (h *ConsolidatedHandler) List(c *gin.Context) {
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

	rows, err := h.service.ListByPeriod(c.Request.Context(), actor, r)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondList(c, rows, 0)
}

// Update edits one snapshot row owned by the caller.
// @Summary     Update a consolidated row
// @Tags        consolidated
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Row ID"
// @Param       request body ConsolidatedLineRequest true "Row values"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /consolidated/{id} [put]
func (h *ConsolidatedHandler) Update(c *gin.Context) {
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

	var req ConsolidatedLineRequest
	if !bindJSON(c, &req) {
		return
	}

	ok, err := h.service.Update(c.Request.Context(), actor, id, req.input())
	respondMutation(c, ok, err)
}

// Delete removes one snapshot row owned by the caller.
// @Summary     Delete a consolidated row
// @Tags        consolidated
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Row ID"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /consolidated/{id} [delete]
func (h *ConsolidatedHandler) Delete(c *gin.Context) {
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
