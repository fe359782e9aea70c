package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/middleware"
	"stockdesk/internal/models"
	"stockdesk/internal/services"
	"stockdesk/internal/session"
	"stockdesk/internal/validator"
)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

var (
	alice = session.Identity{Username: "alice", UserID: 1, Role: session.RoleUser}
	root  = session.Identity{Username: "root", UserID: 2, Role: session.RoleAdministrator}
)

func injectIdentity(id session.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetIdentity(c, id)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func listCount(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	result := parseJSON(t, rec)
	n, ok := result["count"].(float64)
	if !ok {
		t.Fatalf("expected list envelope, got: %v", result)
	}
	return int(n)
}

// --- mock services ---

type auditEntry struct {
	actor       string
	transaction string
	kind        models.AuditKind
}

type mockAuditService struct {
	mu           sync.Mutex
	entries      []auditEntry
	listRecentFn func(limit int) ([]models.AuditLog, error)
}

var _ services.AuditServicer = (*mockAuditService)(nil)

func (m *mockAuditService) Record(_ context.Context, actor session.Identity, transaction string, kind models.AuditKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{actor: actor.Username, transaction: transaction, kind: kind})
}

func (m *mockAuditService) ListRecent(_ context.Context, limit int) ([]models.AuditLog, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(limit)
	}
	return nil, nil
}

type mockUserService struct {
	authenticateFn       func(sess *session.Session, username, secret string) (bool, error)
	registerFn           func(username, secret, role, apiKey string) (*models.User, error)
	changePasswordFn     func(username, current, next string) (bool, error)
	getUserByIDFn        func(id uint) (*models.User, error)
	createUserFn         func(actor session.Identity, username, secret string, role session.Role) (*models.User, error)
	listUsersFn          func(actor session.Identity, role *session.Role) ([]models.User, error)
	adminResetPasswordFn func(actor session.Identity, username, next string) (bool, error)
	deleteUserFn         func(actor session.Identity, username string) (bool, error)
}

var _ services.UserServicer = (*mockUserService)(nil)

func (m *mockUserService) Authenticate(_ context.Context, sess *session.Session, username, secret string) (bool, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(sess, username, secret)
	}
	return false, nil
}

func (m *mockUserService) Register(_ context.Context, username, secret, role, apiKey string) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(username, secret, role, apiKey)
	}
	return &models.User{Username: username, Role: session.RoleUser}, nil
}

func (m *mockUserService) ChangePassword(_ context.Context, username, current, next string) (bool, error) {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(username, current, next)
	}
	return true, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) CreateUser(_ context.Context, actor session.Identity, username, secret string, role session.Role) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(actor, username, secret, role)
	}
	return &models.User{Username: username, Role: role}, nil
}

func (m *mockUserService) ListUsers(_ context.Context, actor session.Identity, role *session.Role) ([]models.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(actor, role)
	}
	return nil, nil
}

func (m *mockUserService) AdminResetPassword(_ context.Context, actor session.Identity, username, next string) (bool, error) {
	if m.adminResetPasswordFn != nil {
		return m.adminResetPasswordFn(actor, username, next)
	}
	return true, nil
}

func (m *mockUserService) DeleteUser(_ context.Context, actor session.Identity, username string) (bool, error) {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(actor, username)
	}
	return true, nil
}
