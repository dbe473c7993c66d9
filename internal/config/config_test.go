package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// clearEnv unsets every variable Load reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "HOST", "PORT", "DATABASE_URL", "MONGODB_URL", "PROJECT_DIR", "LOG_LEVEL",
		"AUTH_JWT_SECRET", "CORS_ORIGINS", "AI_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"OPENAI_MODEL", "CACHE_SIZE", "CACHE_TTL_SEC", "MAX_UPLOAD_BYTES",
	} {
		t.Setenv(key, "")
	}
	// Keep a developer's .env out of the test
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_URL", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.DatabaseURL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, domain.AIProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModel, cfg.LLM.Model)
	assert.False(t, cfg.LLM.IsConfigured(), "no API key means degraded mode")
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/csv?sslmode=disable")
	t.Setenv("MONGODB_URL", "mongodb://ignored")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("CACHE_SIZE", "0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/csv?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.LLM.IsConfigured())
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "s3cret", cfg.AuthJWTSecret)

	backend, err := cfg.StoreBackend()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, backend)
}

func TestLoad_InvalidInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_URL", "mongodb://localhost")
	t.Setenv("PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid PORT")
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "csvrag.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8100
database_url: redis://localhost:6379/0
cache_size: 10
llm:
  provider: ollama
  model: llama3
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "8200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8200, cfg.Port, "environment wins over the file")
	assert.Equal(t, 10, cfg.CacheSize)
	assert.Equal(t, domain.AIProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.True(t, cfg.LLM.IsConfigured(), "ollama needs no API key")
	assert.Equal(t, "0.0.0.0", cfg.Host, "unset keys keep defaults")

	backend, err := cfg.StoreBackend()
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, backend)
}

func TestLoad_BadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: ["), 0o644))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("MONGODB_URL=mongodb://from-dotenv:27017\n"), 0o644))
	// godotenv never overrides variables that are already set, even when empty
	require.NoError(t, os.Unsetenv("MONGODB_URL"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://from-dotenv:27017", cfg.DatabaseURL)
	_ = os.Unsetenv("MONGODB_URL")
}

func TestStoreBackend(t *testing.T) {
	tests := []struct {
		url     string
		backend string
		wantErr bool
	}{
		{"mongodb://localhost:27017", BackendMongo, false},
		{"mongodb+srv://cluster.example.net", BackendMongo, false},
		{"postgres://localhost/db", BackendPostgres, false},
		{"postgresql://localhost/db", BackendPostgres, false},
		{"redis://localhost:6379", BackendRedis, false},
		{"rediss://localhost:6380", BackendRedis, false},
		{"mysql://localhost/db", "", true},
		{"://broken", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := Default()
			cfg.DatabaseURL = tt.url
			backend, err := cfg.StoreBackend()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.backend, backend)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.DatabaseURL = "mongodb://localhost"
	require.NoError(t, cfg.Validate())

	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Port = 8000
	cfg.LLM.Provider = "anthropic-typo"
	assert.Error(t, cfg.Validate())

	cfg.LLM.Provider = domain.AIProviderOpenAI
	cfg.CacheSize = -1
	assert.Error(t, cfg.Validate())
}

func TestSlogLevel_Unknown(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestRead_SkipsValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	cfg, err := Read()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.AuthJWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingDatabaseURL)
}
