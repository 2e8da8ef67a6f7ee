package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, expected %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Storage.Type != "local" {
		t.Errorf("Storage.Type = %q, expected %q", cfg.Storage.Type, "local")
	}
	if cfg.Upload.MaxSizeMB != 5 {
		t.Errorf("Upload.MaxSizeMB = %d, expected 5", cfg.Upload.MaxSizeMB)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis should be disabled by default")
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		db       int
	}{
		{"host only", "redis://localhost:6379", "localhost:6379", "", 0},
		{"with password", "redis://:secret@cache:6380", "cache:6380", "secret", 0},
		{"with user and db", "redis://user:pw@cache:6379/3", "cache:6379", "pw", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.parseRedisURL(tt.url)
			if cfg.Redis.Addr != tt.addr {
				t.Errorf("Addr = %q, expected %q", cfg.Redis.Addr, tt.addr)
			}
			if cfg.Redis.Password != tt.password {
				t.Errorf("Password = %q, expected %q", cfg.Redis.Password, tt.password)
			}
			if cfg.Redis.DB != tt.db {
				t.Errorf("DB = %d, expected %d", cfg.Redis.DB, tt.db)
			}
		})
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: \"9090\"\ndatabase:\n  driver: postgres\n  dsn: host=db\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DB_DSN", "host=override")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, expected %q", cfg.Server.Port, "9090")
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, expected %q", cfg.Database.Driver, "postgres")
	}
	if cfg.Database.DSN != "host=override" {
		t.Errorf("Database.DSN = %q, expected env override", cfg.Database.DSN)
	}
	// unspecified sections keep their defaults
	if cfg.Storage.Type != "local" {
		t.Errorf("Storage.Type = %q, expected default %q", cfg.Storage.Type, "local")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, expected default", cfg.Server.Host)
	}
	if GlobalConfig != cfg {
		t.Error("GlobalConfig should point at the loaded config")
	}
}

func TestMaxUploadBytes(t *testing.T) {
	u := UploadConfig{MaxSizeMB: 2}
	if got := u.MaxUploadBytes(); got != 2<<20 {
		t.Errorf("MaxUploadBytes() = %d, expected %d", got, 2<<20)
	}
	u = UploadConfig{}
	if got := u.MaxUploadBytes(); got != 5<<20 {
		t.Errorf("MaxUploadBytes() with zero = %d, expected default", got)
	}
}

func TestLoad_CORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.test, ,https://b.test ")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"https://a.test", "https://b.test"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, expected %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, expected %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}
