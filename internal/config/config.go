// Package config loads compras.toml and COMPRAS_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full runtime configuration.
type Config struct {
	Server   Server `toml:"server"`
	Log      Log    `toml:"log"`
	Timezone string `toml:"timezone"`
	Backup   Backup `toml:"backup"`
}

// Server contains HTTP and storage settings.
type Server struct {
	Port   string `toml:"port"`
	DBPath string `toml:"db-path"`
}

// Log contains logger settings.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Backup contains remote backup settings. Backups stay disabled unless
// Bucket, AccessKey and SecretKey are all set.
type Backup struct {
	Endpoint      string `toml:"s3-endpoint"`
	Bucket        string `toml:"s3-bucket"`
	Region        string `toml:"s3-region"`
	AccessKey     string `toml:"s3-access-key"`
	SecretKey     string `toml:"s3-secret-key"`
	Hour          int    `toml:"hour"`
	RetentionDays int    `toml:"retention-days"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server:   Server{Port: "8080", DBPath: "compras.db"},
		Log:      Log{Level: "info", Format: "text"},
		Timezone: "UTC",
		Backup:   Backup{Region: "auto", Hour: 3, RetentionDays: 30},
	}
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"COMPRAS_PORT", &cfg.Server.Port},
		{"COMPRAS_DB_PATH", &cfg.Server.DBPath},
		{"COMPRAS_LOG_LEVEL", &cfg.Log.Level},
		{"COMPRAS_LOG_FORMAT", &cfg.Log.Format},
		{"COMPRAS_TIMEZONE", &cfg.Timezone},
		{"COMPRAS_S3_ENDPOINT", &cfg.Backup.Endpoint},
		{"COMPRAS_S3_BUCKET", &cfg.Backup.Bucket},
		{"COMPRAS_S3_REGION", &cfg.Backup.Region},
		{"COMPRAS_S3_ACCESS_KEY", &cfg.Backup.AccessKey},
		{"COMPRAS_S3_SECRET_KEY", &cfg.Backup.SecretKey},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && strings.TrimSpace(v) != "" {
			*s.dst = strings.TrimSpace(v)
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"COMPRAS_BACKUP_HOUR", &cfg.Backup.Hour},
		{"COMPRAS_BACKUP_RETENTION_DAYS", &cfg.Backup.RetentionDays},
	}
	for _, i := range ints {
		v, ok := lookup(i.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s: %w", i.key, err)
		}
		*i.dst = n
	}
	return nil
}

// Validate checks ranges and that the timezone exists.
func (c *Config) Validate() error {
	if c.Backup.Hour < 0 || c.Backup.Hour > 23 {
		return fmt.Errorf("backup hour %d out of range 0-23", c.Backup.Hour)
	}
	if c.Backup.RetentionDays <= 0 {
		return fmt.Errorf("backup retention days must be positive, got %d", c.Backup.RetentionDays)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, used for grouping statistics by month.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// BackupEnabled reports whether remote backups are configured.
func (c *Config) BackupEnabled() bool {
	return c.Backup.Bucket != "" && c.Backup.AccessKey != "" && c.Backup.SecretKey != ""
}
