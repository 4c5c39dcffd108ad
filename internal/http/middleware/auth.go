// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller from an HS256 bearer token. AuthOptional
// accepts anonymous requests and only rejects tokens that are present but
// invalid; RequireAuth and RequireRole gate routes that need a principal.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rehab-rewards-backend/internal/auth"
	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

// Gin context keys set by AuthOptional.
const (
	ctxKeyUserID    = "userID"
	ctxKeyUserRole  = "userRole"
	ctxKeyProfileID = "profileID"
)

// Principal is the authenticated caller as seen by handlers.
type Principal struct {
	AccountID string
	Role      domain.Role
	ProfileID string
}

// Authenticated reports whether a token was presented and accepted.
func (p Principal) Authenticated() bool { return p.AccountID != "" }

// PrincipalFrom returns the caller stored by AuthOptional. Anonymous
// requests yield the zero Principal.
func PrincipalFrom(c *gin.Context) Principal {
	return Principal{
		AccountID: c.GetString(ctxKeyUserID),
		Role:      domain.Role(c.GetString(ctxKeyUserRole)),
		ProfileID: c.GetString(ctxKeyProfileID),
	}
}

// AuthOptional parses "Authorization: Bearer <jwt>" when present. Requests
// without the header continue anonymously. A malformed or expired token is
// rejected with 401 so clients notice stale sessions. With an empty secret
// tokens cannot be verified and every request is treated as anonymous.
func AuthOptional(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := strings.TrimSpace(c.GetHeader("Authorization"))
		if h == "" || secret == "" {
			c.Next()
			return
		}
		scheme, tok, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
			abortAuth(c, http.StatusUnauthorized, "invalid_token", "authorization header must be a bearer token")
			return
		}
		claims, err := auth.Parse(secret, strings.TrimSpace(tok))
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
			return
		}
		c.Set(ctxKeyUserID, claims.AccountID)
		c.Set(ctxKeyUserRole, string(claims.Role))
		c.Set(ctxKeyProfileID, claims.ProfileID)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).Authenticated() {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		c.Next()
	}
}

// RequireRole rejects anonymous requests with 401 and callers whose role is
// not listed with 403.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if !p.Authenticated() {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		abortAuth(c, http.StatusForbidden, "forbidden", "role "+string(p.Role)+" may not perform this action")
	}
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
