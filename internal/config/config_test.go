package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Database:  DatabaseConfig{DataPath: "/some/path"},
		Platform:  PlatformConfig{RootDomain: "gatherly.app"},
		Blob:      BlobConfig{Backend: BlobBackendLocal, LocalPath: "/some/path/blobs"},
		Registrar: RegistrarConfig{Provider: RegistrarNone},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"INFO", true},
		{"trace", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_RequiresRootDomain(t *testing.T) {
	cfg := validConfig()
	cfg.Platform.RootDomain = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROOT_DOMAIN")
}

func TestValidate_Registrar(t *testing.T) {
	cfg := validConfig()
	cfg.Registrar.Provider = RegistrarVercel
	assert.Error(t, cfg.Validate(), "vercel without token")

	cfg.Registrar.VercelAPIToken = "token"
	cfg.Registrar.VercelProjectID = "prj_123"
	assert.NoError(t, cfg.Validate())

	cfg.Registrar.Provider = RegistrarRoute53
	assert.Error(t, cfg.Validate(), "route53 without zone")

	cfg.Registrar.Route53HostedZoneID = "Z123"
	cfg.Registrar.Route53Target = "cname.gatherly.app"
	assert.NoError(t, cfg.Validate())

	cfg.Registrar.Provider = "cloudflare"
	assert.Error(t, cfg.Validate())
}

func TestValidate_BlobBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Blob.Backend = "gcs"
	assert.Error(t, cfg.Validate())
}

func TestBlobConfig_Configured(t *testing.T) {
	tests := []struct {
		name string
		cfg  BlobConfig
		want bool
	}{
		{"s3 with token and bucket", BlobConfig{Backend: BlobBackendS3, ReadWriteToken: "AKIA:secret", Bucket: "uploads"}, true},
		{"s3 without token", BlobConfig{Backend: BlobBackendS3, Bucket: "uploads"}, false},
		{"s3 with malformed token", BlobConfig{Backend: BlobBackendS3, ReadWriteToken: "AKIA", Bucket: "uploads"}, false},
		{"s3 without bucket", BlobConfig{Backend: BlobBackendS3, ReadWriteToken: "AKIA:secret"}, false},
		{"local", BlobConfig{Backend: BlobBackendLocal, LocalPath: "/tmp/blobs"}, true},
		{"none", BlobConfig{Backend: BlobBackendNone}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Configured())
		})
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/gatherly", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "gatherly"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/abs/../abs/path", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("GATHERLY_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "GATHERLY_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "GATHERLY_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "GATHERLY_TEST_MISSING", "default"))
}

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "ROOT_DOMAIN=Gatherly.App\nSIDE_EFFECT_TIMEOUT=3s\nCORS_ALLOWED_ORIGINS=https://app.gatherly.app, https://admin.gatherly.app\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv does not override variables that are already set, so make sure
	// the keys under test are unset for the duration of the test.
	for _, key := range []string{"ROOT_DOMAIN", "SIDE_EFFECT_TIMEOUT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load([]string{"-env-file", envFile, "-data-path", dir})
	require.NoError(t, err)

	assert.Equal(t, "gatherly.app", cfg.Platform.RootDomain)
	assert.Equal(t, 3*time.Second, cfg.Platform.SideEffectTimeout)
	assert.Equal(t, []string{"https://app.gatherly.app", "https://admin.gatherly.app"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, dir, cfg.Database.DataPath)
	assert.Equal(t, filepath.Join(dir, "blobs"), cfg.Blob.LocalPath)
	assert.Equal(t, filepath.Join(dir, "gatherly.db"), cfg.Database.Path())
}

func TestLoad_EnvOverridesEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ROOT_DOMAIN=file.example\n"), 0o600))
	t.Setenv("ROOT_DOMAIN", "env.example")

	cfg, err := Load([]string{"-env-file", envFile, "-data-path", dir})
	require.NoError(t, err)
	assert.Equal(t, "env.example", cfg.Platform.RootDomain)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SIDE_EFFECT_TIMEOUT", "soon")

	_, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env"), "-data-path", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "side_effect_timeout")
}
