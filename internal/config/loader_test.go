package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		cfg, err := LoadFrom([]string{"INTERVIEWD_JWT_SECRET=super-secret"})
		if err != nil {
			t.Fatalf("LoadFrom returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:interviewd.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.DefaultExpiryWindow != 72*time.Hour {
			t.Fatalf("expected default expiry window 72h, got %s", cfg.DefaultExpiryWindow)
		}
		if cfg.JWTSecret != "super-secret" {
			t.Fatalf("expected secret to be loaded, got %q", cfg.JWTSecret)
		}
		if cfg.RedisAddr != "" {
			t.Fatalf("expected redis to be disabled by default, got %q", cfg.RedisAddr)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		_, err := LoadFrom(nil)
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "config: required values are missing: INTERVIEWD_JWT_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration, list and nested fields", func(t *testing.T) {
		cfg, err := LoadFrom([]string{
			"INTERVIEWD_JWT_SECRET=secret-value",
			"INTERVIEWD_HTTP_PORT=9090",
			"INTERVIEWD_DEFAULT_EXPIRY_WINDOW=24h",
			"INTERVIEWD_ALLOWED_ORIGINS=https://a.example,https://b.example",
			"INTERVIEWD_TOKEN_HASH_ITERATIONS=5",
		})
		if err != nil {
			t.Fatalf("LoadFrom returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 || cfg.Addr() != ":9090" {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.DefaultExpiryWindow != 24*time.Hour {
			t.Fatalf("expected expiry window 24h, got %s", cfg.DefaultExpiryWindow)
		}
		if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
			t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
		}
		if cfg.TokenHash.Iterations != 5 || cfg.TokenHash.MemoryKiB != 64*1024 {
			t.Fatalf("unexpected token hash config: %+v", cfg.TokenHash)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		_, err := LoadFrom([]string{
			"INTERVIEWD_JWT_SECRET=secret-value",
			"INTERVIEWD_HTTP_PORT=0",
			"INTERVIEWD_LOCK_TTL=-1s",
			"INTERVIEWD_LOG_LEVEL=loud",
		})
		if err == nil {
			t.Fatalf("expected error")
		}
		for _, key := range []string{"INTERVIEWD_HTTP_PORT", "INTERVIEWD_LOCK_TTL", "INTERVIEWD_LOG_LEVEL"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in %q", key, err.Error())
			}
		}
	})

	t.Run("rejects malformed numbers", func(t *testing.T) {
		_, err := LoadFrom([]string{
			"INTERVIEWD_JWT_SECRET=secret-value",
			"INTERVIEWD_HTTP_PORT=eighty",
		})
		if err == nil {
			t.Fatalf("expected parse error")
		}
	})
}

func TestLoader_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interviewd.yaml")
	content := `
http_port: 7070
jwt_secret: from-file
redis_addr: localhost:6379
lock_ttl: 3s
allowed_origins:
  - https://app.example
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom([]string{
		FileEnv + "=" + path,
		"INTERVIEWD_HTTP_PORT=7171",
	})
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.HTTPPort != 7171 {
		t.Fatalf("expected environment to override file, got %d", cfg.HTTPPort)
	}
	if cfg.JWTSecret != "from-file" || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.LockTTL != 3*time.Second {
		t.Fatalf("expected lock ttl 3s, got %s", cfg.LockTTL)
	}
	if cfg.DefaultExpiryWindow != 72*time.Hour {
		t.Fatalf("expected untouched default, got %s", cfg.DefaultExpiryWindow)
	}

	if _, err := LoadFrom([]string{FileEnv + "=" + filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
