package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/config"
	"stockdesk/internal/middleware"
	"stockdesk/internal/models"
	"stockdesk/internal/session"
)

func setupAuthRouter(handler *AuthHandler, id session.Identity) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.GET("/profile", injectIdentity(id), handler.GetProfile)
	r.POST("/profile/password", injectIdentity(id), handler.ChangePassword)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotRole, gotKey string
		userSvc := &mockUserService{
			registerFn: func(username, _, role, apiKey string) (*models.User, error) {
				gotRole, gotKey = role, apiKey
				return &models.User{Base: models.Base{ID: 7}, Username: username, Role: session.RoleAdministrator}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc), session.Anonymous)

		rec := doRequest(r, "POST", "/auth/register",
			`{"username":"bob","password":"pw","role":"ADM","api_key":"k"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotRole != "ADM" || gotKey != "k" {
			t.Errorf("expected role and key forwarded, got %q %q", gotRole, gotKey)
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["username"] != "bob" || user["role"] != "ADMINISTRATOR" {
			t.Errorf("unexpected user payload: %v", user)
		}
		if _, leaked := user["password"]; leaked {
			t.Error("password hash must not be returned")
		}
	})

	t.Run("returns 400 on missing api key", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}), session.Anonymous)

		rec := doRequest(r, "POST", "/auth/register", `{"username":"bob","password":"pw"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on unknown role", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}), session.Anonymous)

		rec := doRequest(r, "POST", "/auth/register", `{"username":"bob","password":"pw","role":"ROOT","api_key":"k"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 403 on wrong registration key", func(t *testing.T) {
		userSvc := &mockUserService{
			registerFn: func(_, _, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidAPIKey
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc), session.Anonymous)

		rec := doRequest(r, "POST", "/auth/register", `{"username":"bob","password":"pw","api_key":"nope"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_API_KEY")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	config.Set(&config.Config{JWTSecret: "test-secret", JWTExpirationDur: time.Hour})

	t.Run("returns a token for the authenticated identity", func(t *testing.T) {
		userSvc := &mockUserService{
			authenticateFn: func(sess *session.Session, username, secret string) (bool, error) {
				if username != "alice" || secret != "pw" {
					return false, nil
				}
				sess.Set("alice", 1, session.RoleUser)
				return true, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc), session.Anonymous)

		rec := doRequest(r, "POST", "/auth/login", `{"username":"alice","password":"pw"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		token, _ := parseJSON(t, rec)["token"].(string)
		id, err := middleware.ParseToken(token)
		if err != nil {
			t.Fatalf("token did not parse: %v", err)
		}
		if id != alice {
			t.Errorf("expected %+v, got %+v", alice, id)
		}
	})

	t.Run("returns 401 on bad credentials", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}), session.Anonymous)

		rec := doRequest(r, "POST", "/auth/login", `{"username":"alice","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 503 when storage fails", func(t *testing.T) {
		userSvc := &mockUserService{
			authenticateFn: func(_ *session.Session, _, _ string) (bool, error) {
				return false, apperrors.ErrStorageUnavailable
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc), session.Anonymous)

		rec := doRequest(r, "POST", "/auth/login", `{"username":"alice","password":"pw"}`)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns the caller", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id uint) (*models.User, error) {
				return &models.User{Base: models.Base{ID: id}, Username: "alice", Role: session.RoleUser}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc), alice)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["id"] != float64(1) {
			t.Errorf("expected id 1, got %v", user["id"])
		}
	})

	t.Run("returns 401 without identity", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}), session.Anonymous)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	t.Run("changes the caller's password", func(t *testing.T) {
		var gotUser string
		userSvc := &mockUserService{
			changePasswordFn: func(username, _, _ string) (bool, error) {
				gotUser = username
				return true, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc), alice)

		rec := doRequest(r, "POST", "/profile/password", `{"current_password":"a","new_password":"b"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotUser != "alice" {
			t.Errorf("expected alice, got %q", gotUser)
		}
	})

	t.Run("returns 401 on wrong current password", func(t *testing.T) {
		userSvc := &mockUserService{
			changePasswordFn: func(_, _, _ string) (bool, error) { return false, nil },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc), alice)

		rec := doRequest(r, "POST", "/profile/password", `{"current_password":"x","new_password":"b"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})
}
