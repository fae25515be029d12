package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gatherly/gatherly-server/internal/auth"
	"github.com/gatherly/gatherly-server/internal/http/response"
)

const (
	stateCookieName = "gatherly_oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

// GitHubSignIn runs the GitHub OAuth web flow.
type GitHubSignIn interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubProfile, error)
}

// handleGitHubLogin starts the OAuth flow.
// GET /api/v1/auth/github/login.
func (s *Server) handleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if s.opts.GitHub == nil {
		response.Error(w, http.StatusServiceUnavailable, "GitHub sign-in is not configured", s.logger)
		return
	}

	state := auth.NewState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api/v1/auth/github",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.opts.GitHub.AuthCodeURL(state), http.StatusFound)
}

// handleGitHubCallback finishes the OAuth flow, upserts the user and
// stores a session token cookie.
// GET /api/v1/auth/github/callback.
func (s *Server) handleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if s.opts.GitHub == nil || s.opts.Tokens == nil {
		response.Error(w, http.StatusServiceUnavailable, "GitHub sign-in is not configured", s.logger)
		return
	}

	query := r.URL.Query()
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		response.BadRequest(w, "Invalid sign-in state", s.logger)
		return
	}
	code := query.Get("code")
	if code == "" {
		response.BadRequest(w, "Missing authorization code", s.logger)
		return
	}

	profile, err := s.opts.GitHub.Exchange(r.Context(), code)
	if err != nil {
		s.logger.Warn("GitHub sign-in failed", "error", err)
		response.Unauthorized(w, "GitHub sign-in failed", s.logger)
		return
	}

	user, err := s.services.Users.SignIn(r.Context(), profile)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	token, err := s.opts.Tokens.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("Failed to issue session token", "user_id", user.ID, "error", err)
		response.InternalError(w, "Failed to issue session token", s.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Path:   "/api/v1/auth/github",
		MaxAge: -1,
	})
	http.SetCookie(w, s.sessionCookie(token, int(s.opts.Tokens.Duration().Seconds())))

	s.logger.Info("User signed in", "user_id", user.ID, "github_id", user.GitHubID)

	redirect := s.opts.LoginRedirectURL
	if redirect == "" {
		redirect = "/"
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

// handleLogout clears the session cookie. Tokens are stateless and stay
// valid until they expire.
// POST /api/v1/auth/logout.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, s.sessionCookie("", -1))
	response.Success(w, map[string]string{"message": "Signed out"}, s.logger)
}

func (s *Server) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
