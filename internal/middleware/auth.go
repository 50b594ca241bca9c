package middleware

import (
	"net/http"
	"strings"

	"github.com/01moynul/med-delivery-golang/internal/auth"
	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key holding the caller's auth.Identity.
const IdentityKey = "identity"

// TokenValidator verifies a bearer token. *auth.Manager implements it.
type TokenValidator interface {
	ValidateToken(token string) (auth.Identity, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// ok is false when the header is absent; errMsg is set when it is malformed.
func bearerToken(c *gin.Context) (token string, ok bool, errMsg string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, ""
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", true, "Invalid token format (must be Bearer)"
	}
	return parts[1], true, ""
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the decoded identity in the context.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		token, present, errMsg := bearerToken(c)
		if !present {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not Authorized"})
			return
		}
		if errMsg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		// 2. --- Validate Token ---
		id, err := tokens.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 3. --- Success ---
		c.Set(IdentityKey, id)
		c.Next()
	}
}

// OptionalAuth decodes a bearer token when one is sent. A malformed or
// invalid token is still rejected; a missing one is not.
func OptionalAuth(tokens TokenValidator) gin.HandlerFunc {
	strict := AuthMiddleware(tokens)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		strict(c)
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not Authorized"})
			return
		}
		if !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: admin role required"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware or OptionalAuth.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	raw, exists := c.Get(IdentityKey)
	if !exists {
		return auth.Identity{}, false
	}
	id, ok := raw.(auth.Identity)
	return id, ok
}
