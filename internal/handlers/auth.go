package handlers

import (
	"context"
	"net/http"
	"strings"
)

// Auth-proxy headers. The service runs behind an authenticating reverse
// proxy (oauth2-proxy style) that injects the verified identity.
const (
	headerUser   = "X-Forwarded-User"
	headerEmail  = "X-Forwarded-Email"
	headerGroups = "X-Forwarded-Groups"
)

type contextKey string

const userContextKey contextKey = "authUser"

// AuthUser is the identity of the caller as asserted by the auth proxy
type AuthUser struct {
	ID     string
	Email  string
	Groups []string
}

// String renders the identity the way it is recorded as a sender
func (u *AuthUser) String() string {
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

// AuthMiddleware extracts the caller identity from the auth-proxy headers.
// Requests without an identity are rejected with 401.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(headerUser)
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}

		user := &AuthUser{
			ID:    userID,
			Email: r.Header.Get(headerEmail),
		}
		if raw := r.Header.Get(headerGroups); raw != "" {
			for _, g := range strings.Split(raw, ",") {
				if g = strings.TrimSpace(g); g != "" {
					user.Groups = append(user.Groups, g)
				}
			}
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user, or nil when the
// request bypassed the auth middleware.
func UserFromContext(ctx context.Context) *AuthUser {
	user, _ := ctx.Value(userContextKey).(*AuthUser)
	return user
}
