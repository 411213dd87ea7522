package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Samuelsenhet/m-k-sub001/internal/common/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

// Middleware protects routes by validating the bearer token and putting the
// caller's user id on the request context.
type Middleware struct {
	verifier   *Verifier
	adminToken string
}

func NewMiddleware(verifier *Verifier, adminToken string) *Middleware {
	return &Middleware{
		verifier:   verifier,
		adminToken: adminToken,
	}
}

// Authenticate verifies the JWT and adds the user id to the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			utils.ErrorResponse(w, "Missing or invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			utils.ErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards operational endpoints with a static bearer token,
// separate from user JWTs.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.adminToken == "" {
			utils.ErrorResponse(w, "Admin endpoints disabled", http.StatusForbidden)
			return
		}
		if extractToken(r) != m.adminToken {
			utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken pulls the token out of a "Bearer <token>" header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// GetUserIDFromContext extracts the authenticated user id from a request
// context populated by Authenticate.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
