package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/filter"
	"stockdesk/internal/logger"
	"stockdesk/internal/middleware"
	"stockdesk/internal/models"
	"stockdesk/internal/pagination"
	"stockdesk/internal/repository"
	"stockdesk/internal/services"
	"stockdesk/internal/session"
)

// getIdentity extracts the authenticated identity from the Gin context.
// Returns ErrUnauthorized if nobody is logged in.
func getIdentity(c *gin.Context) (session.Identity, error) {
	id := middleware.Identity(c)
	if id.IsAnonymous() {
		return session.Anonymous, apperrors.ErrUnauthorized
	}
	return id, nil
}

// parsePathID parses a uint path parameter.
// Returns ErrInvalidInput if the parameter is not a valid positive integer.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return uint(id), nil
}

// parseInt64Param parses an integer path or query value.
func parseInt64Param(raw, name string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+name)
	}
	return v, nil
}

// parseRange reads the optional start and end query parameters.
func parseRange(c *gin.Context) (filter.Range, error) {
	return filter.ParseRange(c.Query("start"), c.Query("end"))
}

// parseLimit reads the optional limit query parameter.
func parseLimit(c *gin.Context) (int, error) {
	var req pagination.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	req.Defaults()
	return req.Limit, nil
}

// parseDate parses a required calendar date from a request body.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return filter.ParseDate(raw)
}

// parseOptionalDate parses an optional calendar date; nil and empty stay nil.
func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// bindJSON binds the request body and maps binding failures to INVALID_INPUT.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return false
	}
	return true
}

// respondMutation renders the result of a gated edit or delete. A false
// result is reported as not found, whether the record is missing or the
// caller may not touch it.
func respondMutation(c *gin.Context, ok bool, err error) {
	if err := repository.ErrIfDenied(ok, err); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// respondList writes a list envelope.
func respondList[T any](c *gin.Context, data []T, limit int) {
	c.JSON(http.StatusOK, pagination.NewListResponse(data, limit))
}

// recordExport adds the output audit entry for an export of transaction.
func recordExport(c *gin.Context, audit services.AuditServicer, actor session.Identity, transaction string) {
	if audit == nil {
		return
	}
	audit.Record(c.Request.Context(), actor, transaction, models.AuditOutput)
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// SuccessResponse is returned by edits and deletes.
type SuccessResponse struct {
	Success bool `json:"success"`
}
