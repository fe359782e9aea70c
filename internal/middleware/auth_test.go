package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"stockdesk/internal/config"
	"stockdesk/internal/session"
)

func useTestConfig(t *testing.T) {
	t.Helper()
	config.Set(&config.Config{JWTSecret: "test-secret", JWTExpirationDur: time.Hour})
}

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, Identity(c))
	})
	r.GET("/admin", AuthMiddleware(), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGenerateAndParseToken(t *testing.T) {
	useTestConfig(t)
	id := session.Identity{Username: "ana", UserID: 7, Role: session.RoleUser}

	token, err := GenerateToken(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id {
		t.Errorf("expected %+v, got %+v", id, got)
	}

	if _, err := GenerateToken(session.Anonymous); err == nil {
		t.Error("expected an error for an anonymous session")
	}
}

func TestParseToken_Rejects(t *testing.T) {
	useTestConfig(t)

	t.Run("wrong_secret", func(t *testing.T) {
		claims := &JWTClaims{Username: "ana", Role: session.RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer}}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other"))
		if _, err := ParseToken(token); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("expired", func(t *testing.T) {
		claims := &JWTClaims{Username: "ana", Role: session.RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			}}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if _, err := ParseToken(token); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("unknown_role", func(t *testing.T) {
		claims := &JWTClaims{Username: "ana", Role: "ROOT",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer}}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if _, err := ParseToken(token); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	useTestConfig(t)
	r := setupAuthRouter()

	userToken, _ := GenerateToken(session.Identity{Username: "ana", UserID: 2, Role: session.RoleUser})
	adminToken, _ := GenerateToken(session.Identity{Username: "root", UserID: 1, Role: session.RoleAdministrator})

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing_header", "/whoami", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad_scheme", "/whoami", "Basic " + userToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage_token", "/whoami", "Bearer not-a-token", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"valid_user", "/whoami", "Bearer " + userToken, http.StatusOK, ""},
		{"user_on_admin_route", "/admin", "Bearer " + userToken, http.StatusForbidden, "PERMISSION_DENIED"},
		{"admin_on_admin_route", "/admin", "Bearer " + adminToken, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(r, tt.path, tt.header)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("error code = %q, want %q", code, tt.wantCode)
				}
			}
		})
	}

	t.Run("identity_in_context", func(t *testing.T) {
		body := parseBody(t, get(r, "/whoami", "Bearer "+userToken))
		if body["username"] != "ana" || body["role"] != "USER" {
			t.Errorf("unexpected identity %v", body)
		}
	})
}
