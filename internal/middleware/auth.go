package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"stockdesk/internal/config"
	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/session"
)

const (
	identityKey = "identity"
	userIDKey   = "userID"
	tokenIssuer = "stockdesk-api"
)

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID   uint         `json:"user_id"`
	Username string       `json:"username"`
	Role     session.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token for id. The token carries the whole
// identity so requests never consult a process-wide current user.
func GenerateToken(id session.Identity) (string, error) {
	if id.IsAnonymous() {
		return "", errors.New("cannot issue a token for an anonymous session")
	}
	now := time.Now()
	claims := &JWTClaims{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Get().JWTExpirationDur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   id.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// ParseToken validates a session token and returns the identity it carries.
func ParseToken(tokenString string) (session.Identity, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return session.Anonymous, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Username == "" || !claims.Role.Valid() {
		return session.Anonymous, errors.New("token carries no identity")
	}
	return session.Identity{Username: claims.Username, UserID: claims.UserID, Role: claims.Role}, nil
}

// AuthMiddleware verifies the bearer token and puts the caller's identity in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		id, err := ParseToken(parts[1])
		if err != nil {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

// RequireAdmin rejects callers that are not administrators. It must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Identity(c).IsAdmin() {
			abortWithError(c, apperrors.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

// SetIdentity stores id in the request context.
func SetIdentity(c *gin.Context, id session.Identity) {
	c.Set(identityKey, id)
	c.Set(userIDKey, id.UserID)
}

// Identity returns the caller's identity, or session.Anonymous.
func Identity(c *gin.Context) session.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return session.Anonymous
	}
	id, ok := v.(session.Identity)
	if !ok {
		return session.Anonymous
	}
	return id
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
