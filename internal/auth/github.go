package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/gatherly/gatherly-server/internal/domain"
)

const githubAPIBaseURL = "https://api.github.com"

// ErrGitHubProfile is returned when the GitHub user profile cannot be read.
var ErrGitHubProfile = errors.New("auth: github profile unavailable")

// GitHubProfile is the subset of GET /user the server keeps.
type GitHubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// User converts the profile into a user record ready for upsert.
func (p *GitHubProfile) User(userID string) *domain.User {
	return &domain.User{
		Entity:   domain.Entity{ID: userID},
		Name:     p.Name,
		Username: p.Login,
		Email:    p.Email,
		Image:    p.AvatarURL,
		GitHubID: strconv.FormatInt(p.ID, 10),
	}
}

// GitHub runs the OAuth web flow against GitHub.
type GitHub struct {
	oauth      *oauth2.Config
	apiBaseURL string
}

// NewGitHub creates a GitHub sign-in provider.
func NewGitHub(clientID, clientSecret, redirectURL string) *GitHub {
	return &GitHub{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: githubAPIBaseURL,
	}
}

// NewState returns an unguessable OAuth state value.
func NewState() string {
	return uuid.NewString()
}

// AuthCodeURL returns the GitHub consent page URL for state.
func (g *GitHub) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for the signed-in user's profile.
func (g *GitHub) Exchange(ctx context.Context, code string) (*GitHubProfile, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBaseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGitHubProfile, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrGitHubProfile, resp.StatusCode, string(body))
	}

	var profile GitHubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrGitHubProfile, err)
	}
	if profile.ID == 0 {
		return nil, fmt.Errorf("%w: missing id", ErrGitHubProfile)
	}
	return &profile, nil
}
