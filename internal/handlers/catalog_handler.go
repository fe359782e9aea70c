package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stockdesk/internal/services"
)

// CatalogHandler handles the product catalog.
type CatalogHandler struct {
	service services.CatalogServicer
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service services.CatalogServicer) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// CatalogEntryRequest is one catalog row.
type CatalogEntryRequest struct {
	Code        string              `json:"code" binding:"required,max=100"`
	Description string              `json:"description" binding:"required,max=255"`
	Price       decimal.NullDecimal `json:"price" swaggertype:"number"`
}

// ReplaceCatalogRequest carries a full catalog.
type ReplaceCatalogRequest struct {
	Entries []CatalogEntryRequest `json:"entries" binding:"required"`
}

func (r CatalogEntryRequest) input() services.CatalogInput {
	return services.CatalogInput{Code: r.Code, Description: r.Description, Price: r.Price}
}

// List returns the whole catalog ordered by code.
// @Summary     List catalog entries
// @Tags        catalog
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.CatalogEntry
// @Router      /catalog [get]
func (h *CatalogHandler) List(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondList(c, entries, 0)
}

// Lookup returns the entry for a product code.
// @Summary     Look up a catalog entry
// @Tags        catalog
// @Produce     json
// @Security    BearerAuth
// @Param       code path string true "Product code"
// @Success     200 {object} models.CatalogEntry
// @Failure     404 {object} ErrorResponse "Unknown code"
// @Router      /catalog/{code} [get]
func (h *CatalogHandler) Lookup(c *gin.Context) {
	if _, err := getIdentity(c); err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.service.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Upsert creates an entry or edits one owned by the caller.
// @Summary     Create or update a catalog entry
// @Tags        catalog
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CatalogEntryRequest true "Entry"
// @Success     200 {object} models.CatalogEntry
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Entry owned by another user"
// @Router      /catalog [post]
func (h *CatalogHandler) Upsert(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CatalogEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.service.Upsert(c.Request.Context(), actor, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Delete removes an entry owned by the caller.
// @Summary     Delete a catalog entry
// @Tags        catalog
// @Produce     json
// @Security    BearerAuth
// @Param       code path string true "Product code"
// @Success     200 {object} SuccessResponse
// @Failure     404 {object} ErrorResponse "Not found or not permitted"
// @Router      /catalog/{code} [delete]
func (h *CatalogHandler) Delete(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ok, err := h.service.Delete(c.Request.Context(), actor, c.Param("code"))
	respondMutation(c, ok, err)
}

// Replace swaps the whole catalog in one transaction.
// @Summary     Replace the catalog
// @Description Administrators only. Rows without code or description are skipped.
// @Tags        catalog
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ReplaceCatalogRequest true "Full catalog"
// @Success     200 {object} map[string]int "stored entry count"
// @Failure     403 {object} ErrorResponse "Not an administrator"
// @Failure     409 {object} ErrorResponse "Duplicate code"
// @Router      /catalog [put]
func (h *CatalogHandler) Replace(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReplaceCatalogRequest
	if !bindJSON(c, &req) {
		return
	}

	entries := make([]services.CatalogInput, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, e.input())
	}

	n, err := h.service.Replace(c.Request.Context(), actor, entries)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stored": n})
}
