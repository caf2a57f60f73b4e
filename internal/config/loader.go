// Package config loads interviewd settings from defaults, an optional YAML
// file and INTERVIEWD_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "INTERVIEWD_"

// FileEnv names the variable holding the optional YAML file path.
const FileEnv = EnvPrefix + "CONFIG_FILE"

// TokenHashConfig tunes argon2id hashing of candidate access tokens.
type TokenHashConfig struct {
	MemoryKiB   uint32 `yaml:"memory_kib" env:"MEMORY_KIB"`
	Iterations  uint32 `yaml:"iterations" env:"ITERATIONS"`
	Parallelism uint8  `yaml:"parallelism" env:"PARALLELISM"`
}

// Config captures the settings of the interviewd service.
type Config struct {
	HTTPPort            int             `yaml:"http_port" env:"HTTP_PORT"`
	SQLiteDSN           string          `yaml:"sqlite_dsn" env:"SQLITE_DSN"`
	JWTSecret           string          `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTIssuer           string          `yaml:"jwt_issuer" env:"JWT_ISSUER"`
	PublicBaseURL       string          `yaml:"public_base_url" env:"PUBLIC_BASE_URL"`
	DefaultExpiryWindow time.Duration   `yaml:"default_expiry_window" env:"DEFAULT_EXPIRY_WINDOW"`
	RedisAddr           string          `yaml:"redis_addr" env:"REDIS_ADDR"`
	LockTTL             time.Duration   `yaml:"lock_ttl" env:"LOCK_TTL"`
	AllowedOrigins      []string        `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	OTelEndpoint        string          `yaml:"otel_endpoint" env:"OTEL_ENDPOINT"`
	LogLevel            string          `yaml:"log_level" env:"LOG_LEVEL"`
	TokenHash           TokenHashConfig `yaml:"token_hash" envPrefix:"TOKEN_HASH_"`
}

// Default returns the configuration used before any file or variable is read.
func Default() Config {
	return Config{
		HTTPPort:            8080,
		SQLiteDSN:           "file:interviewd.db",
		PublicBaseURL:       "http://localhost:8080",
		DefaultExpiryWindow: 72 * time.Hour,
		LockTTL:             10 * time.Second,
		AllowedOrigins:      []string{"*"},
		LogLevel:            "info",
		TokenHash: TokenHashConfig{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: 2,
		},
	}
}

// Load reads the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Environ())
}

// LoadFrom reads configuration from an explicit environment ("KEY=value").
func LoadFrom(environ []string) (Config, error) {
	cfg := Default()
	vars := env.ToMap(environ)

	if path := strings.TrimSpace(vars[FileEnv]); path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: vars,
	}); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

// Validate reports every missing and invalid key in one error.
func (c Config) Validate() error {
	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if strings.TrimSpace(c.JWTSecret) == "" {
		missing = append(missing, EnvPrefix+"JWT_SECRET")
	}
	if strings.TrimSpace(c.SQLiteDSN) == "" {
		missing = append(missing, EnvPrefix+"SQLITE_DSN")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		invalid = append(invalid, EnvPrefix+"HTTP_PORT")
	}
	if c.DefaultExpiryWindow <= 0 {
		invalid = append(invalid, EnvPrefix+"DEFAULT_EXPIRY_WINDOW")
	}
	if c.LockTTL <= 0 {
		invalid = append(invalid, EnvPrefix+"LOCK_TTL")
	}
	if c.TokenHash.MemoryKiB == 0 || c.TokenHash.Iterations == 0 || c.TokenHash.Parallelism == 0 {
		invalid = append(invalid, EnvPrefix+"TOKEN_HASH_*")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, EnvPrefix+"LOG_LEVEL")
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("config: required values are missing: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("config: invalid values: %s", strings.Join(invalid, ", ")))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
