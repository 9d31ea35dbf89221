package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey struct{}

var claimsKey contextKey

// ClaimsFrom returns the authenticated caller's claims, if any
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// WithClaims stores claims in the context. Exposed for handler tests.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// RequireAuth authenticates the request from the Authorization bearer
// token and stores the claims in the context. Missing or invalid
// credentials end the request with 401.
func RequireAuth(manager *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeMessage(w, http.StatusUnauthorized, "Missing Authorization Header")
				return
			}
			claims, err := manager.ValidateAccess(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin ends the request with 403 unless the caller's claims carry
// the admin flag. Must run after RequireAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Missing Authorization Header")
				return
			}
			if !claims.IsAdmin {
				writeMessage(w, http.StatusForbidden, "user must be admin!")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoleOrAdmin ends the request with 403 unless the caller carries
// the named role or the admin flag. The check is a flat set-membership
// test against the token's claim snapshot. Must run after RequireAuth.
func RequireRoleOrAdmin(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Missing Authorization Header")
				return
			}
			if !claims.HasRole(role) && !claims.IsAdmin {
				writeMessage(w, http.StatusForbidden, "user without permission or not admin!")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsSelfOrAdmin reports whether the caller owns the resource or is admin
func IsSelfOrAdmin(claims *Claims, ownerID int64) bool {
	if claims.IsAdmin {
		return true
	}
	id, err := claims.UserID()
	return err == nil && id == ownerID
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
