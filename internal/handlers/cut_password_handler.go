package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stockdesk/internal/models"
	"stockdesk/internal/services"
)

// CutPasswordHandler handles cut-password order requests.
type CutPasswordHandler struct {
	service services.CutPasswordServicer
	audit   services.AuditServicer
}

// NewCutPasswordHandler creates a new CutPasswordHandler.
func NewCutPasswordHandler(service services.CutPasswordServicer, audit services.AuditServicer) *CutPasswordHandler {
	return &CutPasswordHandler{service: service, audit: audit}
}

// CutPasswordItemRequest is one item cut from an order.
type CutPasswordItemRequest struct {
	ItemCode int64 `json:"item_code"`
	Quantity int64 `json:"quantity"`
}

// CreateCutPasswordRequest represents a cut-password order with its items.
type CreateCutPasswordRequest struct {
	OrderNumber int64                    `json:"order_number" binding:"required"`
	LoadNumber  int64                    `json:"load_number" binding:"required"`
	Value       decimal.Decimal          `json:"value" swaggertype:"number"`
	OrderDate   string                   `json:"order_date" binding:"required"`
	Status      string                   `json:"status" binding:"omitempty,cut_status"`
	ClosingDate *string                  `json:"closing_date"`
	Note        *string                  `json:"note"`
	Items       []CutPasswordItemRequest `json:"items"`
}

// UpdateCutPasswordRequest represents the editable header fields of an order.
type UpdateCutPasswordRequest struct {
	LoadNumber *int64           `json:"load_number"`
	Value      *decimal.Decimal `json:"value" swaggertype:"number"`
	OrderDate  *string          `json:"order_date"`
	Note       *string          `json:"note"`
}

// UpdateCutPasswordStatusRequest closes an order.
type UpdateCutPasswordStatusRequest struct {
	Status string  `json:"status" binding:"required,terminal_status"`
	Note   *string `json:"note"`
}

// Create records a cut-password order.
// @Summary     Create a cut-password order
// @Tags        cut-passwords
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCutPasswordRequest true "Order"
// @Success     201 {object} models.CutPasswordOrder
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Order number already registered"
// @Router      /cut-passwords [post]
func (h *CutPasswordHandler) Create(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCutPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	orderDate, err := parseDate(req.OrderDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	closing, err := parseOptionalDate(req.ClosingDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	items := make([]services.CutPasswordItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.CutPasswordItemInput{ItemCode: it.ItemCode, Quantity: it.Quantity})
	}

	order, err := h.service.Create(c.Request.Context(), actor, services.CutPasswordInput{
		OrderNumber: req.OrderNumber,
		LoadNumber:  req.LoadNumber,
		Value:       req.Value,
		OrderDate:   orderDate,
		Status:      models.CutPasswordStatus(req.Status),
		ClosingDate: closing,
		Note:        req.Note,
		Items:       items,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// Get returns one order with its items.
// @Summary     Get a cut-password order
// @Tags        cut-passwords
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Order ID"
// @Success     200 {object} models.CutPasswordOrder
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /cut-passwords/{id} [get]
func (h *CutPasswordHandler) Get(c *gin.Context) {
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

	order, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetByOrder returns the order registered under a picking order number.
// @Summary     Get a cut-password order by order number
// @Tags        cut-passwords
// @Produce     json
// @Security    BearerAuth
// @Param       number path int true "Order number"
// @Success     200 {object} models.CutPasswordOrder
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /cut-passwords/by-order/{number} [get]
func (h *CutPasswordHandler) GetByOrder(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	number, err := parseInt64Param(c.Param("number"), "order number")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.service.GetByOrderNumber(c.Request.Context(), actor, number)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Update edits the header of an order owned by the caller.
// @Summary     Update a cut-password order
// @Tags        cut-passwords
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Order ID"
// @Param       request body UpdateCutPasswordRequest true "Fields to change"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /cut-passwords/{id} [put]
func (h *CutPasswordHandler) Update(c *gin.Context) {
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

	var req UpdateCutPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	orderDate, err := parseOptionalDate(req.OrderDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ok, err := h.service.Update(c.Request.Context(), actor, id, services.CutPasswordUpdate{
		LoadNumber: req.LoadNumber,
		Value:      req.Value,
		OrderDate:  orderDate,
		Note:       req.Note,
	})
	respondMutation(c, ok, err)
}

// UpdateStatus finishes or cancels an in-progress order.
// @Summary     Close a cut-password order
// @Description Moves an IN_PROGRESS order and its items to FINISHED or CANCELLED and stamps the closing date.
// @Tags        cut-passwords
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Order ID"
// @Param       request body UpdateCutPasswordStatusRequest true "Target status"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Failure     409 {object} ErrorResponse "Order already closed"
// @Router      /cut-passwords/{id}/status [put]
func (h *CutPasswordHandler) UpdateStatus(c *gin.Context) {
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

	var req UpdateCutPasswordStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ok, err := h.service.UpdateStatus(c.Request.Context(), actor, id, models.CutPasswordStatus(req.Status), req.Note)
	respondMutation(c, ok, err)
}

// Delete removes an order and its items.
// @Summary     Delete a cut-password order
// @Tags        cut-passwords
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Order ID"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /cut-passwords/{id} [delete]
func (h *CutPasswordHandler) Delete(c *gin.Context) {
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

// List returns orders by order-date range, or the open ones when in_progress is set.
// @Summary     List cut-password orders
// @Tags        cut-passwords
// @Produce     json
// @Security    BearerAuth
// @Param       in_progress query bool false "Only open orders visible to the caller"
// @Param       start query string false "Start date (inclusive)"
// @Param       end query string false "End date (inclusive)"
// @Param       limit query int false "Maximum rows"
// @Success     200 {array} models.CutPasswordOrder
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /cut-passwords [get]
func (h *CutPasswordHandler) List(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if c.Query("in_progress") == "true" {
		orders, err := h.service.ListInProgress(c.Request.Context(), actor)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondList(c, orders, 0)
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

	orders, err := h.service.ListByDateRange(c.Request.Context(), actor, r, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondList(c, orders, limit)
}

// Items returns the items of an order.
// @Summary     List the items of a cut-password order
// @Tags        cut-passwords
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Order ID"
// @Success     200 {array} models.CutPasswordItem
// @Router      /cut-passwords/{id}/items [get]
func (h *CutPasswordHandler) Items(c *gin.Context) {
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

// Export returns every order for spreadsheet export.
// @Summary     Export cut-password orders
// @Tags        cut-passwords
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.CutPasswordOrder
// @Router      /cut-passwords/export [get]
func (h *CutPasswordHandler) Export(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	orders, err := h.service.ListAll(c.Request.Context(), actor, 0)
	if err != nil {
		respondWithError(c, err)
		return
	}
	recordExport(c, h.audit, actor, services.TxCutPassword)
	respondList(c, orders, 0)
}
