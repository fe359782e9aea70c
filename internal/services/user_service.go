package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stockdesk/internal/authz"
	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/models"
	"stockdesk/internal/repository"
	"stockdesk/internal/session"
)

// bcryptCost is the work factor for stored password hashes.
var bcryptCost = bcrypt.DefaultCost

// RegistrationKeys are the shared secrets that allow self-service sign-up per role.
type RegistrationKeys struct {
	User  string
	Admin string
}

func (k RegistrationKeys) forRole(role session.Role) string {
	if role == session.RoleAdministrator {
		return k.Admin
	}
	return k.User
}

// userService handles user-related business logic.
type userService struct {
	store *repository.Store
	audit AuditServicer
	keys  RegistrationKeys
}

// NewUserService creates a new UserServicer.
func NewUserService(store *repository.Store, audit AuditServicer, keys RegistrationKeys) UserServicer {
	return &userService{store: store, audit: audit, keys: keys}
}

func (s *userService) findByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.store.DB(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, repository.StorageError(err)
	}
	return &user, nil
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return string(hash), nil
}

// Authenticate checks the credentials and attaches the user to sess on success.
// Unknown users and wrong secrets both yield false.
func (s *userService) Authenticate(ctx context.Context, sess *session.Session, username, secret string) (bool, error) {
	user, err := s.findByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(secret)) != nil {
		return false, nil
	}
	if sess != nil {
		sess.Set(user.Username, user.ID, user.Role)
	}
	return true, nil
}

func (s *userService) create(ctx context.Context, actor session.Identity, username, secret string, role session.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || secret == "" {
		return nil, invalid("username and password are required")
	}

	var count int64
	if err := s.store.DB(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, repository.StorageError(err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateUsername
	}

	hash, err := hashSecret(secret)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, Password: hash, Role: role}
	err = s.store.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrDuplicate.Code) {
			return nil, apperrors.ErrDuplicateUsername
		}
		return nil, err
	}
	record(ctx, s.audit, actor, TxUsers, models.AuditInput)
	return user, nil
}

// Register creates an account when apiKey matches the key configured for
// the requested role. Legacy role names are accepted.
func (s *userService) Register(ctx context.Context, username, secret, role, apiKey string) (*models.User, error) {
	r := session.RoleUser
	if strings.TrimSpace(role) != "" {
		parsed, ok := session.ParseRole(role)
		if !ok {
			return nil, invalid("role must be ADMINISTRATOR or USER")
		}
		r = parsed
	}

	expected := s.keys.forRole(r)
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(apiKey)) != 1 {
		return nil, apperrors.ErrInvalidAPIKey
	}
	return s.create(ctx, session.Anonymous, username, secret, r)
}

// ChangePassword replaces the secret of username when current matches.
func (s *userService) ChangePassword(ctx context.Context, username, current, next string) (bool, error) {
	if next == "" {
		return false, invalid("new password is required")
	}
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return false, nil
	}
	if err := s.setPassword(ctx, user, next); err != nil {
		return false, err
	}
	record(ctx, s.audit, user.Identity(), TxUsers, models.AuditMutation)
	return true, nil
}

func (s *userService) setPassword(ctx context.Context, user *models.User, next string) error {
	hash, err := hashSecret(next)
	if err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Model(user).Update("password", hash).Error
	})
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.store.DB(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, repository.StorageError(err)
	}
	return &user, nil
}

// CreateUser lets an administrator create an account of any role without a registration key.
func (s *userService) CreateUser(ctx context.Context, actor session.Identity, username, secret string, role session.Role) (*models.User, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, invalid("role must be ADMINISTRATOR or USER")
	}
	return s.create(ctx, actor, username, secret, role)
}

// ListUsers returns accounts ordered by username, optionally filtered by role.
func (s *userService) ListUsers(ctx context.Context, actor session.Identity, role *session.Role) ([]models.User, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	q := s.store.DB(ctx).Order("username ASC")
	if role != nil {
		q = q.Where("role = ?", *role)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, repository.StorageError(err)
	}
	if users == nil {
		users = []models.User{}
	}
	record(ctx, s.audit, actor, TxUsers, models.AuditQuery)
	return users, nil
}

// AdminResetPassword sets a new secret for username without the current one.
// Another administrator's password cannot be reset.
func (s *userService) AdminResetPassword(ctx context.Context, actor session.Identity, username, next string) (bool, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return false, err
	}
	if next == "" {
		return false, invalid("new password is required")
	}
	user, err := s.findByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := authz.CanResetPassword(actor, user.Username, user.Role); err != nil {
		return false, err
	}
	if err := s.setPassword(ctx, user, next); err != nil {
		return false, err
	}
	record(ctx, s.audit, actor, TxUsers, models.AuditMutation)
	return true, nil
}

// DeleteUser removes a USER account. Administrators cannot be deleted.
func (s *userService) DeleteUser(ctx context.Context, actor session.Identity, username string) (bool, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return false, err
	}
	user, err := s.findByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := authz.CanDeleteUser(actor, user.Role); err != nil {
		return false, err
	}
	err = s.store.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Delete(user).Error
	})
	if err != nil {
		return false, err
	}
	record(ctx, s.audit, actor, TxUsers, models.AuditMutation)
	return true, nil
}
