package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compras.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != "8080" || cfg.Server.DBPath != "compras.db" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Backup.Hour != 3 || cfg.Backup.RetentionDays != 30 {
		t.Errorf("backup = %+v", cfg.Backup)
	}
	if cfg.BackupEnabled() {
		t.Error("backup should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("COMPRAS_PORT", "")
	path := writeConfig(t, `
timezone = "America/Sao_Paulo"

[server]
port = "9090"

[log]
level = "debug"
format = "json"

[backup]
s3-bucket = "compras"
s3-access-key = "key"
s3-secret-key = "secret"
hour = 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Server.DBPath != "compras.db" {
		t.Errorf("db path = %q, want default", cfg.Server.DBPath)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Backup.Hour != 4 || cfg.Backup.RetentionDays != 30 {
		t.Errorf("backup = %+v", cfg.Backup)
	}
	if !cfg.BackupEnabled() {
		t.Error("expected backup enabled")
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "America/Sao_Paulo" {
		t.Errorf("location = %v, %v", loc, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeConfig(t, "[server\nport = 1")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = "9090"

	err := applyEnv(cfg, envMap(map[string]string{
		"COMPRAS_PORT":                  "7000",
		"COMPRAS_DB_PATH":               " /data/compras.db ",
		"COMPRAS_LOG_LEVEL":             "",
		"COMPRAS_S3_BUCKET":             "b",
		"COMPRAS_BACKUP_HOUR":           "22",
		"COMPRAS_BACKUP_RETENTION_DAYS": "7",
	}))
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("port = %q, want 7000", cfg.Server.Port)
	}
	if cfg.Server.DBPath != "/data/compras.db" {
		t.Errorf("db path = %q", cfg.Server.DBPath)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("empty env should not override, level = %q", cfg.Log.Level)
	}
	if cfg.Backup.Bucket != "b" || cfg.Backup.Hour != 22 || cfg.Backup.RetentionDays != 7 {
		t.Errorf("backup = %+v", cfg.Backup)
	}
}

func TestApplyEnvBadInt(t *testing.T) {
	cfg := Default()
	err := applyEnv(cfg, envMap(map[string]string{"COMPRAS_BACKUP_HOUR": "three"}))
	if err == nil {
		t.Error("expected error for non-numeric hour")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"hour too high", func(c *Config) { c.Backup.Hour = 24 }},
		{"negative hour", func(c *Config) { c.Backup.Hour = -1 }},
		{"zero retention", func(c *Config) { c.Backup.RetentionDays = 0 }},
		{"unknown timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
