package http

import (
	"context"
	"net/http"
	"strings"

	"passkey-auth/internal/domain"
	"passkey-auth/internal/service"
)

type ctxKey string

const ctxKeyUser ctxKey = "session_user"

// SessionCookieName is the cookie carrying the opaque session token. The same
// token is accepted as a bearer credential for non-browser clients.
const SessionCookieName = "admin_session"

// sessionToken extracts the token from the cookie or, failing that, the
// Authorization header. An empty return means the request is anonymous.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// SessionAuth resolves the request's session to a user and stores it in the
// context. Requests without a live session get 401 before reaching the handler.
func SessionAuth(sessions service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.GetUserFromSession(r.Context(), sessionToken(r))
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if user == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a subtree on the authenticated user's role. It must run
// after SessionAuth.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "insufficient role")
		})
	}
}

// CurrentUser returns the authenticated user placed by SessionAuth, or nil.
func CurrentUser(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(ctxKeyUser).(*domain.User); ok {
		return u
	}
	return nil
}
