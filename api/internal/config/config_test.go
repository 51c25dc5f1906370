package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"COPYCHECK_CONFIG", "PORT", "LOG_LEVEL", "LOG_FORMAT", "MODEL_PROVIDER", "MODEL_TIMEOUT",
		"MODEL_TEMPERATURE", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "GEMINI_API_KEY",
		"GEMINI_MODEL", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "RATE_LIMIT", "RATE_INTERVAL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "DATABASE_URL", "CACHE_SIZE", "CACHE_TTL",
		"ALLOWED_ORIGIN", "FALLBACK_STATUS", "PROMPT_DIR", "MAX_BODY_BYTES",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, "gpt-4o-mini", cfg.Model())
	assert.Empty(t, cfg.APIKey())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "copy-check.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
model_provider: claude
anthropic_api_key: file-key
rate_limit: 5
rate_interval: 10s
cache_ttl: 15m
fallback_status: 200
`), 0o600))

	t.Setenv("RATE_LIMIT", "7")
	t.Setenv("ALLOWED_ORIGIN", "https://copy.example.org")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "claude", cfg.ModelProvider)
	assert.Equal(t, "file-key", cfg.APIKey())
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model())
	assert.Equal(t, 7, cfg.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.RateInterval)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 200, cfg.FallbackStatus)
	assert.Equal(t, "https://copy.example.org", cfg.AllowedOrigin)
}

func TestLoad_PathFromEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model_provider: gemini\n"), 0o600))
	t.Setenv("COPYCHECK_CONFIG", path)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.APIKey())
	assert.Equal(t, "gemini-2.5-flash", cfg.Model())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "bad int", env: map[string]string{"RATE_LIMIT": "lots"}},
		{name: "bad duration", env: map[string]string{"MODEL_TIMEOUT": "soon"}},
		{name: "bad float", env: map[string]string{"MODEL_TEMPERATURE": "warm"}},
		{name: "unknown provider", env: map[string]string{"MODEL_PROVIDER": "parrot"}},
		{name: "bad status", env: map[string]string{"FALLBACK_STATUS": "42"}},
		{name: "zero limit", env: map[string]string{"RATE_LIMIT": "0"}},
		{name: "broken yaml", file: "port: [\n"},
		{name: "missing file", file: "-"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			switch tc.file {
			case "":
			case "-":
				path = filepath.Join(t.TempDir(), "absent.yaml")
			default:
				path = filepath.Join(t.TempDir(), "c.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tc.file), 0o600))
			}

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_ZeroTemperature(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_TEMPERATURE", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Zero(t, cfg.ModelTemperature)
}
