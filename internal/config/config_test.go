package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
log:
  level: warn
redis:
  addr: redis:6390
store:
  key_prefix: pfe
auth:
  base_url: http://auth.internal:9000
sync:
  interval: 45s
  manual_per_min: 3
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
	if cfg.Redis.Addr != "redis:6390" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr)
	}
	if cfg.Store.KeyPrefix != "pfe" {
		t.Fatalf("unexpected key prefix: %s", cfg.Store.KeyPrefix)
	}
	if cfg.Auth.BaseURL != "http://auth.internal:9000" {
		t.Fatalf("unexpected auth base url: %s", cfg.Auth.BaseURL)
	}
	if cfg.Sync.Interval != 45*time.Second {
		t.Fatalf("unexpected sync interval: %s", cfg.Sync.Interval)
	}
	if cfg.Sync.ManualPerMin != 3 {
		t.Fatalf("unexpected manual sync rate: %d", cfg.Sync.ManualPerMin)
	}

	// untouched sections keep defaults
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Notify.Timeout != 10*time.Second {
		t.Fatalf("unexpected notify timeout: %s", cfg.Notify.Timeout)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("REDIS_ADDR", "envhost:6379")
	t.Setenv("SYNC_INTERVAL", "2m")
	t.Setenv("SYNC_ON_NAVIGATE", "false")
	t.Setenv("IDENTITY_REFRESH_TIMEOUT", "3s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Redis.Addr != "envhost:6379" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr)
	}
	if cfg.Sync.Interval != 2*time.Minute {
		t.Fatalf("unexpected sync interval: %s", cfg.Sync.Interval)
	}
	if cfg.Sync.SyncOnNavigate {
		t.Fatalf("expected sync_on_navigate disabled")
	}
	if cfg.Identity.RefreshTimeout != 3*time.Second {
		t.Fatalf("unexpected refresh timeout: %s", cfg.Identity.RefreshTimeout)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SYNC_INTERVAL", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid duration override")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"STORE_KEY_PREFIX",
		"STORE_FEED_TTL",
		"AUTH_BASE_URL",
		"AUTH_TIMEOUT",
		"NOTIFY_BASE_URL",
		"NOTIFY_TIMEOUT",
		"SYNC_INTERVAL",
		"SYNC_FETCH_TIMEOUT",
		"SYNC_MANUAL_PER_MIN",
		"SYNC_MANUAL_BURST",
		"SYNC_ON_NAVIGATE",
		"IDENTITY_REFRESH_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}
