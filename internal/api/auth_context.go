package api

import (
	"net/http"
	"strings"

	"github.com/gatherly/gatherly-server/internal/auth"
)

// sessionCookieName is the cookie the GitHub callback stores the session token in.
const sessionCookieName = "gatherly_session"

// authMiddleware returns a middleware that validates session tokens and stores
// the user ID in context. The token comes from a Bearer header or the session
// cookie. If no token is present or it is invalid, the request continues
// without a user; services reject it where authentication is required.
func authMiddleware(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" || tokens == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.VerifyAccessToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
