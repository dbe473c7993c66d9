// Package config loads service configuration from an optional .env file,
// an optional YAML file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// Store backends selected by the database URL scheme
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// ErrMissingDatabaseURL is returned when neither DATABASE_URL nor MONGODB_URL is set
var ErrMissingDatabaseURL = errors.New("DATABASE_URL (or MONGODB_URL) is required")

// Config is the root service configuration
type Config struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	DatabaseURL string   `yaml:"database_url"`
	CORSOrigins []string `yaml:"cors_origins"`
	ProjectDir  string   `yaml:"project_dir"`
	LogLevel    string   `yaml:"log_level"`

	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// CacheSize is the number of cached documents; 0 disables the cache
	CacheSize   int `yaml:"cache_size"`
	CacheTTLSec int `yaml:"cache_ttl_sec"`

	// AuthJWTSecret enables bearer token auth when non-empty
	AuthJWTSecret string `yaml:"auth_jwt_secret"`

	LLM domain.LLMSettings `yaml:"llm"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           8000,
		CORSOrigins:    []string{"*"},
		ProjectDir:     ".",
		LogLevel:       "info",
		MaxUploadBytes: 32 << 20,
		CacheSize:      256,
		CacheTTLSec:    300,
		LLM: domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			Model:    domain.DefaultLLMModel,
		},
	}
}

// Load builds and validates the configuration
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read builds the configuration without validating it:
// defaults, then .env, then CONFIG_FILE, then environment.
func Read() (*Config, error) {
	// A missing .env file is normal outside development
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML file over the current values
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Host = getEnv("HOST", c.Host)
	c.DatabaseURL = getEnv("DATABASE_URL", getEnv("MONGODB_URL", c.DatabaseURL))
	c.ProjectDir = getEnv("PROJECT_DIR", c.ProjectDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.AuthJWTSecret = getEnv("AUTH_JWT_SECRET", c.AuthJWTSecret)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	c.LLM.Provider = domain.AIProvider(getEnv("AI_PROVIDER", string(c.LLM.Provider)))
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("OPENAI_MODEL", c.LLM.Model)

	var err error
	if c.Port, err = getEnvInt("PORT", c.Port); err != nil {
		return err
	}
	if c.CacheSize, err = getEnvInt("CACHE_SIZE", c.CacheSize); err != nil {
		return err
	}
	if c.CacheTTLSec, err = getEnvInt("CACHE_TTL_SEC", c.CacheTTLSec); err != nil {
		return err
	}
	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes))
	if err != nil {
		return err
	}
	c.MaxUploadBytes = int64(maxUpload)

	return nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if _, err := c.StoreBackend(); err != nil {
		return err
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache size %d", c.CacheSize)
	}
	if c.LLM.Provider != "" && !c.LLM.Provider.IsValid() {
		return fmt.Errorf("unknown AI provider %q", c.LLM.Provider)
	}
	return nil
}

// StoreBackend derives the document store backend from the database URL scheme
func (c *Config) StoreBackend() (string, error) {
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "redis", "rediss":
		return BackendRedis, nil
	default:
		return "", fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}
}

// CacheTTL returns the cache entry lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
