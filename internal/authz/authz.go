// Package authz implements the permission predicates of the desk.
package authz

import (
	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/session"
)

// CanModify reports whether actor may edit or delete a record owned by owner.
// Administrators may modify anything. Other users only records they own;
// ownerless legacy records are therefore admin-only.
func CanModify(owner *string, actor session.Identity) bool {
	if actor.IsAnonymous() {
		return false
	}
	if actor.Role == session.RoleAdministrator {
		return true
	}
	return owner != nil && *owner == actor.Username
}

// RequireAdmin returns ErrPermissionDenied unless actor is an administrator.
func RequireAdmin(actor session.Identity) error {
	if !actor.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// CanResetPassword applies the administrator carve-out: an administrator may
// reset the password of users, never of another administrator.
func CanResetPassword(actor session.Identity, targetUsername string, targetRole session.Role) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if targetRole == session.RoleAdministrator && targetUsername != actor.Username {
		return apperrors.WithMessage(apperrors.ErrPermissionDenied, "Cannot reset the password of another administrator")
	}
	return nil
}

// CanDeleteUser applies the administrator carve-out: administrators are never deleted.
func CanDeleteUser(actor session.Identity, targetRole session.Role) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if targetRole == session.RoleAdministrator {
		return apperrors.WithMessage(apperrors.ErrPermissionDenied, "Administrator accounts cannot be deleted")
	}
	return nil
}
