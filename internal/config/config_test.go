package config

import (
	"os"
	"path/filepath"
	"testing"
)

// --- Load / Save / Validate tests ---

func TestLoad_Valid(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	data := `version: 1
database:
  path: events.db
log:
  level: debug
notify:
  mode: redis
  redis_url: redis://localhost:6379/0
  channel: planner:test
server:
  addr: 127.0.0.1:9090
`
	os.WriteFile(p, []byte(data), 0644)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Database.Path != "events.db" {
		t.Fatalf("expected events.db, got %s", cfg.Database.Path)
	}
	if cfg.Notify.Mode != "redis" || cfg.Notify.Channel != "planner:test" {
		t.Fatalf("unexpected notify config: %+v", cfg.Notify)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Fatalf("expected addr 127.0.0.1:9090, got %s", cfg.Server.Addr)
	}
}

func TestLoad_DefaultsFillMissingSections(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	os.WriteFile(p, []byte("version: 1\n"), 0644)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "planner.db" {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
	if cfg.Notify.Mode != "log" {
		t.Fatalf("expected default notify mode log, got %q", cfg.Notify.Mode)
	}
	if cfg.Server.ShutdownSeconds() != 10 {
		t.Fatalf("expected default shutdown 10, got %d", cfg.Server.ShutdownSeconds())
	}
}

func TestLoad_RedisNeedsURL(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	data := `version: 1
notify:
  mode: redis
`
	os.WriteFile(p, []byte(data), 0644)

	_, err := Load(p)
	if err == nil {
		t.Fatal("expected validation error for redis mode without url")
	}
}

func TestLoad_UnknownNotifyMode(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	os.WriteFile(p, []byte("notify:\n  mode: carrier-pigeon\n"), 0644)

	_, err := Load(p)
	if err == nil {
		t.Fatal("expected validation error for unknown notify mode")
	}
}

func TestLoad_BadLogLevel(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	os.WriteFile(p, []byte("log:\n  level: loud\n"), 0644)

	_, err := Load(p)
	if err == nil {
		t.Fatal("expected validation error for bad log level")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	os.WriteFile(p, []byte("version: 1\n"), 0644)

	t.Setenv("PLANNER_DB_PATH", "/tmp/other.db")
	t.Setenv("PLANNER_NOTIFY_MODE", "redis")
	t.Setenv("PLANNER_REDIS_URL", "localhost:6379")
	t.Setenv("PLANNER_SHUTDOWN_TIMEOUT_SEC", "3")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "/tmp/other.db" {
		t.Fatalf("expected env db path, got %s", cfg.Database.Path)
	}
	if cfg.Notify.Mode != "redis" || cfg.Notify.RedisURL != "localhost:6379" {
		t.Fatalf("expected env notify settings, got %+v", cfg.Notify)
	}
	if cfg.Server.ShutdownSeconds() != 3 {
		t.Fatalf("expected shutdown 3, got %d", cfg.Server.ShutdownSeconds())
	}
}

func TestLoad_BadEnvNumber(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	os.WriteFile(p, []byte("version: 1\n"), 0644)
	t.Setenv("PLANNER_SHUTDOWN_TIMEOUT_SEC", "soon")

	if _, err := Load(p); err == nil {
		t.Fatal("expected error for non-numeric timeout")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, ".env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}

	p := filepath.Join(dir, ".env")
	os.WriteFile(p, []byte("PLANNER_TEST_DOTENV=from-file\n"), 0644)
	t.Setenv("PLANNER_TEST_DOTENV", "")
	os.Unsetenv("PLANNER_TEST_DOTENV")

	if err := LoadDotEnv(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("PLANNER_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected from-file, got %q", got)
	}
}

func TestSave_And_Reload(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Notify = NotifyConfig{Mode: "none"}
	cfg.Server.ShutdownTimeout = 30

	if err := Save(p, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(p)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Notify.Mode != "none" {
		t.Fatalf("expected notify mode none, got %q", loaded.Notify.Mode)
	}
	if loaded.Server.ShutdownSeconds() != 30 {
		t.Fatalf("expected 30, got %d", loaded.Server.ShutdownSeconds())
	}
}
