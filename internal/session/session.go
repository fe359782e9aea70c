// Package session holds the identity acting on behalf of a desk operator.
//
// A Session is an explicit value created per login and handed to every core
// operation; there is no process-wide current user.
package session

import (
	"strings"
	"sync"
)

// Role is the coarse permission level of a user.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleUser          Role = "USER"
)

// ParseRole normalises role names, including the legacy spellings stored by
// older desk installations. Unknown values yield ok=false.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMINISTRATOR", "ADMINISTRADOR", "ADM", "ADMIN":
		return RoleAdministrator, true
	case "USER", "USUARIO", "USUÁRIO":
		return RoleUser, true
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdministrator || r == RoleUser
}

// Identity is the authenticated user an operation runs as.
type Identity struct {
	Username string `json:"username"`
	UserID   uint   `json:"user_id"`
	Role     Role   `json:"role"`
}

// Anonymous is the identity of a session with nobody logged in.
var Anonymous = Identity{}

// IsAnonymous reports whether no user is attached.
func (id Identity) IsAnonymous() bool {
	return id.Username == ""
}

// IsAdmin reports whether the identity carries the administrator role.
func (id Identity) IsAdmin() bool {
	return !id.IsAnonymous() && id.Role == RoleAdministrator
}

// OwnerRef returns the owner columns to stamp on a newly created record.
// Anonymous identities produce nil owners.
func (id Identity) OwnerRef() (*string, *uint) {
	if id.IsAnonymous() {
		return nil, nil
	}
	name := id.Username
	uid := id.UserID
	return &name, &uid
}

// Session is the mutable current-user context of one desk client.
type Session struct {
	mu      sync.RWMutex
	current Identity
}

// New returns a session with no identity attached.
func New() *Session {
	return &Session{}
}

// Set attaches an identity, replacing any previous one.
func (s *Session) Set(username string, userID uint, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Identity{Username: username, UserID: userID, Role: role}
}

// Clear detaches the current identity.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Anonymous
}

// Current returns a copy of the attached identity, or Anonymous.
func (s *Session) Current() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
