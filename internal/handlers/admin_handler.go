package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/repository"
	"stockdesk/internal/services"
	"stockdesk/internal/session"
)

// AdminHandler handles user administration.
type AdminHandler struct {
	userService services.UserServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService services.UserServicer) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// CreateUserRequest represents the payload for creating a user.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required,max=128"`
	Role     string `json:"role" binding:"omitempty,role"`
}

// ResetPasswordRequest represents the payload for an administrative password reset.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,max=128"`
}

// ListUsers lists accounts.
// @Summary     List users
// @Description List accounts ordered by username, optionally filtered by role. Password hashes are never returned.
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       role query string false "ADMINISTRATOR or USER"
// @Success     200 {array} UserResponse
// @Failure     403 {object} ErrorResponse "Not an administrator"
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var role *session.Role
	if raw := c.Query("role"); raw != "" {
		r, ok := session.ParseRole(raw)
		if !ok {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "role must be ADMINISTRATOR or USER"))
			return
		}
		role = &r
	}

	users, err := h.userService.ListUsers(c.Request.Context(), actor, role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	respondList(c, out, 0)
}

// CreateUser creates an account on behalf of an administrator.
// @Summary     Create user
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateUserRequest true "New account"
// @Success     201 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not an administrator"
// @Failure     409 {object} ErrorResponse "Username already taken"
// @Router      /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	role := session.RoleUser
	if req.Role != "" {
		role, _ = session.ParseRole(req.Role)
	}

	user, err := h.userService.CreateUser(c.Request.Context(), actor, req.Username, req.Password, role)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": userResponse(user)})
}

// ResetPassword sets a new password for another account.
// @Summary     Reset a user's password
// @Description Administrators may reset users and their own password, never another administrator's.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       username path string true "Username"
// @Param       request body ResetPasswordRequest true "New password"
// @Success     200 {object} SuccessResponse
// @Failure     403 {object} ErrorResponse "Not permitted"
// @Failure     404 {object} ErrorResponse "Unknown user"
// @Router      /admin/users/{username}/password [put]
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	ok, err := h.userService.AdminResetPassword(c.Request.Context(), actor, c.Param("username"), req.NewPassword)
	if err := repository.ErrIfDenied(ok, err); err != nil {
		if apperrors.HasCode(err, apperrors.ErrNotFoundOrDenied.Code) {
			err = apperrors.ErrUserNotFound
		}
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUser removes an account.
// @Summary     Delete a user
// @Description Administrator accounts cannot be deleted.
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       username path string true "Username"
// @Success     200 {object} SuccessResponse
// @Failure     403 {object} ErrorResponse "Not permitted"
// @Failure     404 {object} ErrorResponse "Unknown user"
// @Router      /admin/users/{username} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ok, err := h.userService.DeleteUser(c.Request.Context(), actor, c.Param("username"))
	if err := repository.ErrIfDenied(ok, err); err != nil {
		if apperrors.HasCode(err, apperrors.ErrNotFoundOrDenied.Code) {
			err = apperrors.ErrUserNotFound
		}
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
