package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/services"
)

// BlockedItemHandler handles blocked-item requests.
type BlockedItemHandler struct {
	service services.BlockedItemServicer
	audit   services.AuditServicer
}

// NewBlockedItemHandler creates a new BlockedItemHandler.
func NewBlockedItemHandler(service services.BlockedItemServicer, audit services.AuditServicer) *BlockedItemHandler {
	return &BlockedItemHandler{service: service, audit: audit}
}

// CreateBlockedItemRequest represents the payload for blocking an item.
type CreateBlockedItemRequest struct {
	ItemCode          int64   `json:"item_code" binding:"required,gt=0"`
	Quantity          int64   `json:"quantity" binding:"required,gt=0"`
	Reason            string  `json:"reason" binding:"required"`
	ResponsibleSector string  `json:"responsible_sector" binding:"required"`
	Badge             *int64  `json:"badge" binding:"omitempty,gt=0"`
	MovementDate      *string `json:"movement_date"`
}

// UpdateBlockedItemRequest represents the editable fields of a blocked item.
type UpdateBlockedItemRequest struct {
	Quantity          *int64  `json:"quantity" binding:"omitempty,gt=0"`
	Reason            *string `json:"reason"`
	ResponsibleSector *string `json:"responsible_sector"`
	Badge             *int64  `json:"badge" binding:"omitempty,gt=0"`
	MovementDate      *string `json:"movement_date"`
}

// Create blocks an item.
// @Summary     Create a blocked item
// @Tags        blocked-items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBlockedItemRequest true "Blocked item"
// @Success     201 {object} models.BlockedItem
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /blocked-items [post]
func (h *BlockedItemHandler) Create(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBlockedItemRequest
	if !bindJSON(c, &req) {
		return
	}
	movement, err := parseOptionalDate(req.MovementDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	item, err := h.service.Create(c.Request.Context(), actor, services.BlockedItemInput{
		ItemCode:          req.ItemCode,
		Quantity:          req.Quantity,
		Reason:            req.Reason,
		ResponsibleSector: req.ResponsibleSector,
		Badge:             req.Badge,
		MovementDate:      movement,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Get returns one blocked item.
// @Summary     Get a blocked item
// @Tags        blocked-items
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Blocked item ID"
// @Success     200 {object} models.BlockedItem
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /blocked-items/{id} [get]
func (h *BlockedItemHandler) Get(c *gin.Context) {
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

	item, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Update edits a blocked item owned by the caller.
// @Summary     Update a blocked item
// @Tags        blocked-items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Blocked item ID"
// @Param       request body UpdateBlockedItemRequest true "Fields to change"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /blocked-items/{id} [put]
func (h *BlockedItemHandler) Update(c *gin.Context) {
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

	var req UpdateBlockedItemRequest
	if !bindJSON(c, &req) {
		return
	}
	movement, err := parseOptionalDate(req.MovementDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ok, err := h.service.Update(c.Request.Context(), actor, id, services.BlockedItemUpdate{
		Quantity:          req.Quantity,
		Reason:            req.Reason,
		ResponsibleSector: req.ResponsibleSector,
		Badge:             req.Badge,
		MovementDate:      movement,
	})
	respondMutation(c, ok, err)
}

// Delete removes a blocked item owned by the caller.
// @Summary     Delete a blocked item
// @Tags        blocked-items
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Blocked item ID"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /blocked-items/{id} [delete]
func (h *BlockedItemHandler) Delete(c *gin.Context) {
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

// List searches blocked items.
// @Summary     List blocked items
// @Description With item_code, every entry for that item. Otherwise filtered by creation range and reason substring.
// @Tags        blocked-items
// @Produce     json
// @Security    BearerAuth
// @Param       item_code query int false "Item code"
// @Param       start query string false "Start date (inclusive)"
// @Param       end query string false "End date (inclusive)"
// @Param       reason query string false "Reason contains (case-insensitive)"
// @Param       limit query int false "Maximum rows"
// @Success     200 {array} models.BlockedItem
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /blocked-items [get]
func (h *BlockedItemHandler) List(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if raw := c.Query("item_code"); raw != "" {
		code, err := parseInt64Param(raw, "item_code")
		if err != nil {
			respondWithError(c, err)
			return
		}
		items, err := h.service.ListByItem(c.Request.Context(), actor, code)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondList(c, items, 0)
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

	items, err := h.service.ListFiltered(c.Request.Context(), actor, services.BlockedItemFilter{
		Range:          r,
		ReasonContains: c.Query("reason"),
		Limit:          limit,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondList(c, items, limit)
}

// Export returns every blocked item for spreadsheet export.
// @Summary     Export blocked items
// @Tags        blocked-items
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.BlockedItem
// @Router      /blocked-items/export [get]
func (h *BlockedItemHandler) Export(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	items, err := h.service.ListAll(c.Request.Context(), actor, 0)
	if err != nil {
		respondWithError(c, err)
		return
	}
	recordExport(c, h.audit, actor, services.TxBlockedItems)
	respondList(c, items, 0)
}
