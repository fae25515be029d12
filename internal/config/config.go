// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Blob storage backends.
const (
	BlobBackendS3    = "s3"
	BlobBackendLocal = "local"
	BlobBackendNone  = "none"
)

// Domain registrar providers.
const (
	RegistrarVercel  = "vercel"
	RegistrarRoute53 = "route53"
	RegistrarNone    = "none"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Platform  PlatformConfig
	Blob      BlobConfig
	Registrar RegistrarConfig
	Cache     CacheConfig
	Images    ImagesConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 60s, uploads are slow)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins for the dashboard
}

// DatabaseConfig holds persistence configuration.
type DatabaseConfig struct {
	// DataPath is the directory holding the database, auth key and local blobs.
	DataPath string
}

// Path returns the SQLite database file path.
func (d DatabaseConfig) Path() string {
	return filepath.Join(d.DataPath, "gatherly.db")
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes)
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration // e.g., 720h

	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURL  string
	// LoginRedirectURL is where the browser lands after a successful sign-in.
	LoginRedirectURL string
}

// GitHubEnabled reports whether GitHub sign-in is configured.
func (a AuthConfig) GitHubEnabled() bool {
	return a.GitHubClientID != "" && a.GitHubClientSecret != ""
}

// PlatformConfig holds multi-tenant settings.
type PlatformConfig struct {
	// RootDomain is the platform domain communities live under, e.g. "gatherly.app".
	RootDomain string
	// SideEffectTimeout bounds registrar and cache calls made after a write.
	SideEffectTimeout time.Duration
}

// BlobConfig holds uploaded file storage configuration.
type BlobConfig struct {
	Backend string
	// ReadWriteToken is "ACCESS_KEY_ID:SECRET_ACCESS_KEY" for the s3 backend.
	ReadWriteToken string
	Bucket         string
	Region         string
	Endpoint       string // Optional, for S3-compatible providers
	PublicURL      string // Base URL uploaded objects are served from
	LocalPath      string // Directory for the local backend
}

// Configured reports whether uploads can be accepted.
func (b BlobConfig) Configured() bool {
	switch b.Backend {
	case BlobBackendS3:
		_, _, ok := b.Credentials()
		return ok && b.Bucket != ""
	case BlobBackendLocal:
		return b.LocalPath != ""
	default:
		return false
	}
}

// Credentials splits ReadWriteToken into an access key pair.
func (b BlobConfig) Credentials() (accessKeyID, secretAccessKey string, ok bool) {
	accessKeyID, secretAccessKey, ok = strings.Cut(b.ReadWriteToken, ":")
	if !ok || accessKeyID == "" || secretAccessKey == "" {
		return "", "", false
	}
	return accessKeyID, secretAccessKey, true
}

// RegistrarConfig holds custom domain registrar configuration.
type RegistrarConfig struct {
	Provider string

	VercelAPIToken  string
	VercelProjectID string
	VercelTeamID    string // Optional
	VercelBaseURL   string

	Route53HostedZoneID string
	// Route53Target is the CNAME target custom domains are pointed at.
	Route53Target string
	Route53Region string
}

// CacheConfig holds cache invalidation configuration.
type CacheConfig struct {
	RedisURL                 string // Empty disables the tag cache
	TTL                      time.Duration
	CloudFrontDistributionID string // Empty disables CDN purges
}

// ImagesConfig holds image analysis configuration.
type ImagesConfig struct {
	BlurhashTimeout time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig with explicit command-line arguments.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("gatherly", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database and local files")
	rootDomain := fs.String("root-domain", "", "Platform root domain (e.g., gatherly.app)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 720h)")

	blobBackend := fs.String("blob-backend", "", "Blob storage backend (s3, local, none)")
	registrar := fs.String("registrar", "", "Custom domain registrar (vercel, route53, none)")
	redisURL := fs.String("redis-url", "", "Redis URL for the tag cache")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is fine; existing environment variables win over the file.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: getListConfigValue("", "CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Auth: AuthConfig{
			AccessTokenKey:     nil, // Set by auth.LoadOrGenerateKey at startup
			GitHubClientID:     getConfigValue("", "GITHUB_CLIENT_ID", ""),
			GitHubClientSecret: getConfigValue("", "GITHUB_CLIENT_SECRET", ""),
			GitHubRedirectURL:  getConfigValue("", "GITHUB_REDIRECT_URL", ""),
			LoginRedirectURL:   getConfigValue("", "LOGIN_REDIRECT_URL", "/"),
		},
		Platform: PlatformConfig{
			RootDomain: strings.ToLower(getConfigValue(*rootDomain, "ROOT_DOMAIN", "localhost:8080")),
		},
		Blob: BlobConfig{
			Backend:        getConfigValue(*blobBackend, "BLOB_BACKEND", BlobBackendLocal),
			ReadWriteToken: getConfigValue("", "BLOB_READ_WRITE_TOKEN", ""),
			Bucket:         getConfigValue("", "BLOB_BUCKET", ""),
			Region:         getConfigValue("", "BLOB_REGION", "us-east-1"),
			Endpoint:       getConfigValue("", "BLOB_ENDPOINT", ""),
			PublicURL:      getConfigValue("", "BLOB_PUBLIC_URL", ""),
			LocalPath:      getConfigValue("", "BLOB_LOCAL_PATH", ""),
		},
		Registrar: RegistrarConfig{
			Provider:            getConfigValue(*registrar, "REGISTRAR", RegistrarNone),
			VercelAPIToken:      getConfigValue("", "VERCEL_API_TOKEN", ""),
			VercelProjectID:     getConfigValue("", "VERCEL_PROJECT_ID", ""),
			VercelTeamID:        getConfigValue("", "VERCEL_TEAM_ID", ""),
			VercelBaseURL:       getConfigValue("", "VERCEL_BASE_URL", "https://api.vercel.com"),
			Route53HostedZoneID: getConfigValue("", "ROUTE53_HOSTED_ZONE_ID", ""),
			Route53Target:       getConfigValue("", "ROUTE53_TARGET", ""),
			Route53Region:       getConfigValue("", "ROUTE53_REGION", "us-east-1"),
		},
		Cache: CacheConfig{
			RedisURL:                 getConfigValue(*redisURL, "REDIS_URL", ""),
			CloudFrontDistributionID: getConfigValue("", "CLOUDFRONT_DISTRIBUTION_ID", ""),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dst       *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "720h", &cfg.Auth.AccessTokenDuration},
		{"", "SIDE_EFFECT_TIMEOUT", "10s", &cfg.Platform.SideEffectTimeout},
		{"", "CACHE_TTL", "1h", &cfg.Cache.TTL},
		{"", "BLURHASH_TIMEOUT", "10s", &cfg.Images.BlurhashTimeout},
	}
	for _, d := range durations {
		value, err := getDurationConfigValue(d.flagValue, d.envKey, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = value
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Platform.RootDomain == "" {
		return errors.New("ROOT_DOMAIN is required")
	}

	switch c.Blob.Backend {
	case BlobBackendS3, BlobBackendLocal, BlobBackendNone:
	default:
		return fmt.Errorf("invalid blob backend: %s (must be s3, local, or none)", c.Blob.Backend)
	}

	switch c.Registrar.Provider {
	case RegistrarVercel:
		if c.Registrar.VercelAPIToken == "" || c.Registrar.VercelProjectID == "" {
			return errors.New("VERCEL_API_TOKEN and VERCEL_PROJECT_ID are required for the vercel registrar")
		}
	case RegistrarRoute53:
		if c.Registrar.Route53HostedZoneID == "" || c.Registrar.Route53Target == "" {
			return errors.New("ROUTE53_HOSTED_ZONE_ID and ROUTE53_TARGET are required for the route53 registrar")
		}
	case RegistrarNone:
	default:
		return fmt.Errorf("invalid registrar: %s (must be vercel, route53, or none)", c.Registrar.Provider)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath resolves the data directory and the local blob directory beneath it.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Database.DataPath, filepath.Join(homeDir, "Gatherly", "data"))
	if err != nil {
		return err
	}
	c.Database.DataPath = expanded

	blobPath, err := expandPath(c.Blob.LocalPath, filepath.Join(expanded, "blobs"))
	if err != nil {
		return err
	}
	c.Blob.LocalPath = blobPath
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), raw, err)
	}
	return d, nil
}

// getListConfigValue splits a comma separated value, dropping blanks.
func getListConfigValue(flagValue, envKey string) []string {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
