package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
environment: test
oracle:
  api_key: test-key
  extract_model: llama3-8b-8192
  select_model: llama3-70b-8192
  synthesis_model: llama3-70b-8192
`

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "test-key", cfg.Oracle.APIKey)

	// Defaults fill everything the file leaves out.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 1024, cfg.Oracle.MaxTokens)
	assert.Equal(t, "https://query2.finance.yahoo.com/v1/finance/search", cfg.Yahoo.SearchURL)
	assert.Equal(t, 600*time.Second, cfg.Cache.InfoTTL)
	assert.Equal(t, 1024, cfg.Cache.InfoMaxSize)
	assert.Equal(t, 3600*time.Second, cfg.Cache.ReturnsTTL)
	assert.Equal(t, 2048, cfg.Cache.ReturnsMaxSize)
	assert.Equal(t, 10.0, cfg.RateLimit.Capacity)
	assert.Equal(t, 0.5, cfg.RateLimit.RefillPerSec)
	assert.False(t, cfg.Cache.Redis.Enabled)
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
environment: production
server:
  port: 9090
  read_timeout: 5s
oracle:
  api_key: key
  extract_model: m1
  select_model: m2
  synthesis_model: m3
  timeout: 30s
cache:
  info_ttl: 120s
rate_limit:
  capacity: 3
  refill_per_sec: 1
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 120*time.Second, cfg.Cache.InfoTTL)
	assert.Equal(t, 3.0, cfg.RateLimit.Capacity)
	assert.Equal(t, 1.0, cfg.RateLimit.RefillPerSec)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing environment",
			content: "oracle: {api_key: k, extract_model: a, select_model: b, synthesis_model: c}",
			wantErr: "environment is required",
		},
		{
			name:    "missing api key",
			content: "environment: test\noracle: {extract_model: a, select_model: b, synthesis_model: c}",
			wantErr: "oracle.api_key is required",
		},
		{
			name:    "missing extract model",
			content: "environment: test\noracle: {api_key: k, select_model: b, synthesis_model: c}",
			wantErr: "oracle.extract_model is required",
		},
		{
			name:    "missing synthesis model",
			content: "environment: test\noracle: {api_key: k, extract_model: a, select_model: b}",
			wantErr: "oracle.synthesis_model is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	t.Setenv("ORACLE_API_KEY", "env-key")
	t.Setenv("ORACLE_BASE_URL", "https://oracle.internal/v1")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PASSWORD", "s3cret")

	// The file carries no api_key at all, only the env does.
	cfg, err := LoadWithEnv(writeConfig(t, `
environment: test
oracle:
  base_url: https://file.example/v1
  extract_model: m1
  select_model: m2
  synthesis_model: m3
`))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Oracle.APIKey)
	assert.Equal(t, "https://oracle.internal/v1", cfg.Oracle.BaseURL)
	assert.True(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, "redis.internal", cfg.Cache.Redis.Host)
	assert.Equal(t, "s3cret", cfg.Cache.Redis.Password)
}

func TestLoadWithEnv_ValidatesAfterOverride(t *testing.T) {
	t.Setenv("ORACLE_API_KEY", "")

	_, err := LoadWithEnv(writeConfig(t, `
environment: test
oracle:
  extract_model: m1
  select_model: m2
  synthesis_model: m3
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle.api_key is required")
}
