package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoader_Defaults(t *testing.T) {
	cfg := NewLoader(t.TempDir()).Config()

	if cfg.Server.Port != "8080" || cfg.Server.Env != "development" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.RateLimit.Window != 15*time.Minute || cfg.RateLimit.Max != 100 {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.RateLimit.Backend != RateLimitMemory || cfg.RateLimit.KeyPrefix != "rate_limit" || cfg.RateLimit.CleanupInterval != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Storage.Driver != StoragePostgres || cfg.Database.MigrationsDir != "migrations" {
		t.Fatalf("unexpected storage defaults: %+v %+v", cfg.Storage, cfg.Database)
	}
}

func TestLoader_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "RATE_LIMIT_MAX=5\nRATE_LIMIT_WINDOW=30s\nCORS_ALLOWED_ORIGINS=https://a.example.com, https://b.example.com\nSTORAGE_DRIVER=Memory\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewLoader(dir).Config()

	if cfg.RateLimit.Max != 5 || cfg.RateLimit.Window != 30*time.Second {
		t.Fatalf("unexpected rate limit: %+v", cfg.RateLimit)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Fatalf("driver = %q, want memory", cfg.Storage.Driver)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, want) {
		t.Fatalf("origins = %v, want %v", cfg.Server.AllowedOrigins, want)
	}
}

func TestLoader_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("RATE_LIMIT_MAX=5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RATE_LIMIT_MAX", "42")

	if got := NewLoader(dir).Config().RateLimit.Max; got != 42 {
		t.Fatalf("max = %d, want 42", got)
	}
}

func TestLoader_LocalOverridesFillTheEnvironment(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env.local"), []byte("REDIS_PORT=6380\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REDIS_PORT", "")
	os.Unsetenv("REDIS_PORT")

	if got := NewLoader(dir).Config().Redis.Port; got != "6380" {
		t.Fatalf("redis port = %q, want 6380", got)
	}
}

func TestLoader_WatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RATE_LIMIT_MAX=5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir)
	changes := make(chan *Config, 4)
	l.Watch(func(c *Config) { changes <- c })

	// fsnotify needs a moment to register the watch
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("RATE_LIMIT_MAX=7\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.RateLimit.Max == 7 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for config reload")
		}
	}
}

func TestSplitList(t *testing.T) {
	if got := splitList(" , a ,b,, "); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("splitList = %v", got)
	}
	if got := splitList(""); got != nil {
		t.Fatalf("splitList(\"\") = %v, want nil", got)
	}
}
