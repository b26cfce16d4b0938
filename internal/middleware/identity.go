package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// UserIDKey is the gin context key holding the caller identity
const UserIDKey = "user_id"

// ErrMissingIdentity is returned when no caller identity can be resolved
var ErrMissingIdentity = errors.New("caller identity is missing")

// IdentityFromAuthorizer reads the caller identity from an API Gateway
// authorizer context. Lambda authorizers set principalId; JWT authorizers
// nest the token claims under "claims" (REST) or "jwt.claims" (HTTP API).
func IdentityFromAuthorizer(authorizer map[string]interface{}) string {
	if len(authorizer) == 0 {
		return ""
	}

	if id, ok := authorizer["principalId"].(string); ok && id != "" {
		return id
	}

	if sub := subFromClaims(authorizer["claims"]); sub != "" {
		return sub
	}

	if jwtCtx, ok := authorizer["jwt"].(map[string]interface{}); ok {
		return subFromClaims(jwtCtx["claims"])
	}

	return ""
}

func subFromClaims(v interface{}) string {
	switch claims := v.(type) {
	case map[string]interface{}:
		sub, _ := claims["sub"].(string)
		return sub
	case map[string]string:
		return claims["sub"]
	default:
		return ""
	}
}

// IdentityFromBearer extracts the sub claim of a bearer token. The signature
// is not checked here; the upstream authorizer has already verified it.
func IdentityFromBearer(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingIdentity
	}

	tokenParts := strings.SplitN(authHeader, " ", 2)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		return "", fmt.Errorf("invalid authorization header format: %w", ErrMissingIdentity)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(tokenParts[1]), claims); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("failed to read subject claim: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("token has no subject: %w", ErrMissingIdentity)
	}

	return sub, nil
}

// ResolveIdentity returns the caller identity, preferring the authorizer
// context over the bearer token
func ResolveIdentity(authorizer map[string]interface{}, authHeader string) (string, error) {
	if id := IdentityFromAuthorizer(authorizer); id != "" {
		return id, nil
	}
	return IdentityFromBearer(authHeader)
}

// Identity middleware resolves the caller identity from the bearer token and
// stores it under UserIDKey. Requests without an identity get a 401.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ResolveIdentity(nil, c.GetHeader("Authorization"))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":      err.Error(),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
			}).Warn("Caller identity missing")

			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:     "Unauthorized",
				Message:   "caller identity is required",
				RequestID: c.GetString(RequestIDKey),
				Timestamp: time.Now().Format(time.RFC3339),
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID returns the caller identity stored by Identity
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(UserIDKey)
	return userID, userID != ""
}
