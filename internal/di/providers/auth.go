package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/gatherly/gatherly-server/internal/api"
	"github.com/gatherly/gatherly-server/internal/auth"
	"github.com/gatherly/gatherly-server/internal/config"
	"github.com/gatherly/gatherly-server/internal/logger"
)

// AuthKey wraps the authentication key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the authentication key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keyPath := filepath.Join(cfg.Database.DataPath, auth.KeyFileName)
	key, err := auth.LoadOrGenerateKey(keyPath)
	if err != nil {
		return nil, err
	}

	// Update config with the loaded key
	cfg.Auth.AccessTokenKey = key

	log.Info("Authentication key loaded",
		"key_path", keyPath,
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.AccessTokenDuration)
}

// GitHubHandle holds the GitHub OAuth client, nil when sign-in is not configured.
type GitHubHandle struct {
	api.GitHubSignIn
}

// ProvideGitHub provides the GitHub OAuth client.
func ProvideGitHub(i do.Injector) (*GitHubHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Auth.GitHubEnabled() {
		log.Warn("GitHub sign-in disabled: client id or secret missing")
		return &GitHubHandle{}, nil
	}

	log.Info("GitHub sign-in enabled", "redirect_url", cfg.Auth.GitHubRedirectURL)

	return &GitHubHandle{
		GitHubSignIn: auth.NewGitHub(cfg.Auth.GitHubClientID, cfg.Auth.GitHubClientSecret, cfg.Auth.GitHubRedirectURL),
	}, nil
}
