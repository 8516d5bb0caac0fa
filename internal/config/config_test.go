package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points HOME, the working directory and every QUILL_* variable at
// empty scratch locations.
func isolate(t *testing.T) (home, workspace string) {
	t.Helper()
	home = t.TempDir()
	workspace = t.TempDir()

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(workspace); err != nil {
		t.Fatalf("chdir workspace: %v", err)
	}

	t.Setenv("HOME", home)
	for _, key := range []string{
		configDirEnvKey, trustProjectConfigEnvKey, envFileEnvKey,
		"QUILL_DB", "QUILL_BACKUP_DIR", "QUILL_HOST", "QUILL_PORT", "QUILL_DEBUG",
	} {
		t.Setenv(key, "")
	}
	return home, workspace
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DBPath != "./blog.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Server.Port != 8004 {
		t.Fatalf("expected port 8004, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != DefaultHost {
		t.Fatalf("expected host %q, got %q", DefaultHost, cfg.Server.Host)
	}
	if cfg.Server.Debug {
		t.Fatal("expected debug off by default")
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.Server.SiteName != "Blog App" {
		t.Fatalf("expected default site name, got %q", cfg.Server.SiteName)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(`db_path = "/var/lib/quill/blog.db"
log_level = "warn"

[server]
port = 9000
debug = true
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/var/lib/quill/blog.db" {
		t.Fatalf("expected db_path, got %q", cfg.DBPath)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log_level 'warn', got %q", cfg.LogLevel)
	}
	if cfg.Server.Port != 9000 || !cfg.Server.Debug {
		t.Fatalf("expected server section applied, got %+v", cfg.Server)
	}
	if cfg.Server.Host != DefaultHost {
		t.Fatalf("expected host default preserved, got %q", cfg.Server.Host)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFile("/nonexistent/path/.quill.toml", &cfg); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Fatalf("defaults should be preserved")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte("port = = 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := Default()
	if err := loadFile(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range AllowedKeys() {
		if !IsAllowedKey(key) {
			t.Fatalf("expected %q to be allowed", key)
		}
	}
	if IsAllowedKey("server") || IsAllowedKey("invalid") {
		t.Fatal("expected unknown keys to be rejected")
	}
}

func TestGetKey(t *testing.T) {
	cfg := Config{
		DBPath:    "/tmp/test.db",
		BackupDir: "/tmp/backups",
		LogLevel:  "warn",
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8080,
			Debug:    true,
			SiteName: "Notes",
		},
	}

	tests := map[string]string{
		"db_path":          "/tmp/test.db",
		"backup_dir":       "/tmp/backups",
		"log_level":        "warn",
		"server.host":      "0.0.0.0",
		"server.port":      "8080",
		"server.debug":     "true",
		"server.site_name": "Notes",
	}
	for key, want := range tests {
		got, err := cfg.Get(key)
		if err != nil || got != want {
			t.Fatalf("%s: expected %q, got %q (err: %v)", key, want, got, err)
		}
	}

	if _, err := cfg.Get("nope"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestSetKeyCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "new.toml")
	if err := SetKey(path, "db_path", "/srv/blog.db"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/srv/blog.db" {
		t.Fatalf("expected db_path, got %q", cfg.DBPath)
	}
}

func TestSetKeyUpdatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.toml")
	if err := os.WriteFile(path, []byte("db_path = \"old.db\"\n\n[server]\nsite_name = \"Keep\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := SetKey(path, "server.port", "9100"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Fatalf("expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Server.SiteName != "Keep" || cfg.DBPath != "old.db" {
		t.Fatalf("expected other keys preserved, got %+v", cfg)
	}
}

func TestSetKeyValidatesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.toml")
	tests := []struct {
		key   string
		value string
	}{
		{"invalid_key", "value"},
		{"server.port", "0"},
		{"server.port", "http"},
		{"server.debug", "maybe"},
		{"log_level", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			if err := SetKey(path, tt.key, tt.value); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestConfigDirOverridePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnvKey, dir)

	globalPath, err := GlobalPath()
	if err != nil {
		t.Fatalf("global path: %v", err)
	}
	if globalPath != filepath.Join(dir, configFileName) {
		t.Fatalf("unexpected global path: %s", globalPath)
	}

	projectPath, err := ProjectPath()
	if err != nil {
		t.Fatalf("project path: %v", err)
	}
	if projectPath != filepath.Join(dir, configFileName) {
		t.Fatalf("unexpected project path: %s", projectPath)
	}
}

func TestLoadConfigDirOverride(t *testing.T) {
	_, workspace := isolate(t)
	configDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(configDir, configFileName), []byte("db_path = \"override.db\"\n"), 0o644); err != nil {
		t.Fatalf("write override config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workspace, configFileName), []byte("db_path = \"workspace.db\"\n"), 0o644); err != nil {
		t.Fatalf("write workspace config: %v", err)
	}

	t.Setenv(configDirEnvKey, configDir)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "override.db" {
		t.Fatalf("expected config-dir db path, got %q", cfg.DBPath)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("QUILL_DB", "/tmp/override.db")
	t.Setenv("QUILL_PORT", "9999")
	t.Setenv("QUILL_DEBUG", "true")
	t.Setenv("QUILL_HOST", "0.0.0.0")
	t.Setenv("QUILL_BACKUP_DIR", "/tmp/backups")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Fatalf("expected env override for DB path, got %q", cfg.DBPath)
	}
	if cfg.Server.Port != 9999 || !cfg.Server.Debug || cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("expected server env overrides, got %+v", cfg.Server)
	}
	if cfg.BackupDir != "/tmp/backups" {
		t.Fatalf("expected backup dir override, got %q", cfg.BackupDir)
	}
}

func TestLoadRejectsInvalidPortEnv(t *testing.T) {
	isolate(t)
	t.Setenv("QUILL_PORT", "70000")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	_, workspace := isolate(t)
	if err := os.WriteFile(filepath.Join(workspace, ".env"), []byte("QUILL_DB=from-dotenv.db\nQUILL_PORT=8123\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// Already-set variables win over the file.
	t.Setenv("QUILL_PORT", "8200")
	// godotenv sets QUILL_DB in the process env; restore it afterwards.
	t.Setenv("QUILL_DB", "")
	if err := os.Unsetenv("QUILL_DB"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "from-dotenv.db" {
		t.Fatalf("expected db path from .env, got %q", cfg.DBPath)
	}
	if cfg.Server.Port != 8200 {
		t.Fatalf("expected existing env to win, got %d", cfg.Server.Port)
	}
}

func TestLoadFallsBackToDefaultsWhenConfiguredEmpty(t *testing.T) {
	home, _ := isolate(t)
	if err := os.WriteFile(filepath.Join(home, configFileName), []byte("log_level = \"\"\ndb_path = \"\"\n[server]\nport = 0\n"), 0o644); err != nil {
		t.Fatalf("write home config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != DefaultLogLevel || cfg.DBPath != DefaultDBPath || cfg.Server.Port != DefaultPort {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadIgnoresProjectConfigByDefault(t *testing.T) {
	home, workspace := isolate(t)
	if err := os.WriteFile(filepath.Join(home, configFileName), []byte("db_path = \"home.db\"\n"), 0o644); err != nil {
		t.Fatalf("write home config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workspace, configFileName), []byte("db_path = \"project.db\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "home.db" {
		t.Fatalf("expected home config to win, got %q", cfg.DBPath)
	}
	if cfg.TrustedProjectConfigPath != "" {
		t.Fatalf("expected no trusted project config, got %q", cfg.TrustedProjectConfigPath)
	}
}

func TestLoadAppliesProjectConfigWhenTrusted(t *testing.T) {
	home, workspace := isolate(t)
	if err := os.WriteFile(filepath.Join(home, configFileName), []byte("db_path = \"home.db\"\n"), 0o644); err != nil {
		t.Fatalf("write home config: %v", err)
	}
	projectPath := filepath.Join(workspace, configFileName)
	if err := os.WriteFile(projectPath, []byte("db_path = \"project.db\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	t.Setenv(trustProjectConfigEnvKey, "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "project.db" {
		t.Fatalf("expected project config to win, got %q", cfg.DBPath)
	}
	if cfg.TrustedProjectConfigPath != projectPath {
		t.Fatalf("expected trusted path %q, got %q", projectPath, cfg.TrustedProjectConfigPath)
	}
}

func TestLoadDoesNotTrustProjectConfigOnInvalidEnvValue(t *testing.T) {
	_, workspace := isolate(t)
	if err := os.WriteFile(filepath.Join(workspace, configFileName), []byte("db_path = \"project.db\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	t.Setenv(trustProjectConfigEnvKey, "sure")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
}
