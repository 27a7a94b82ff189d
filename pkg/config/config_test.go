package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.Format != "text" || !cfg.Output.Color {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Analysis.Concurrency != 8 || cfg.Analysis.Libraries {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Restore.Dotnet != "dotnet" || cfg.Restore.Timeout != 10*time.Minute {
		t.Errorf("restore = %+v", cfg.Restore)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Cache.TTL != 7*24*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Store.Database != "depdistill" || cfg.Server.Addr != "127.0.0.1:8080" || cfg.Server.Root != "" {
		t.Errorf("store/server = %+v %+v", cfg.Store, cfg.Server)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	content := `
[output]
format = "json"
color = false

[analysis]
libraries = true

[restore]
timeout = "90s"

[cache]
backend = "redis"
redis_addr = "cache:6379"
`
	if err := os.WriteFile(filepath.Join(dir, "depdistill.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := New()
	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.Format != "json" || cfg.Output.Color {
		t.Errorf("output = %+v", cfg.Output)
	}
	if !cfg.Analysis.Libraries {
		t.Error("analysis.libraries not read")
	}
	if cfg.Restore.Timeout != 90*time.Second {
		t.Errorf("restore.timeout = %s", cfg.Restore.Timeout)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if Used(v) == "" {
		t.Error("Used should report the file")
	}
}

func TestLoadEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DEPDISTILL_CACHE_BACKEND", "none")
	t.Setenv("DEPDISTILL_ANALYSIS_CONCURRENCY", "2")
	t.Setenv("DEPDISTILL_STORE_MONGO_URI", "mongodb://db:27017")
	t.Setenv("DEPDISTILL_SERVER_ROOT", "/srv/solutions")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Backend != CacheNone || cfg.Analysis.Concurrency != 2 {
		t.Errorf("env not applied: %+v %+v", cfg.Cache, cfg.Analysis)
	}
	if cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("store.mongo_uri = %q", cfg.Store.MongoURI)
	}
	if cfg.Server.Root != "/srv/solutions" {
		t.Errorf("server.root = %q", cfg.Server.Root)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing explicit config file should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Analysis: AnalysisConfig{Concurrency: 1},
			Restore:  RestoreConfig{Timeout: time.Minute},
			Cache:    CacheConfig{Backend: CacheFile, Dir: "/tmp/c"},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"file without dir", func(c *Config) { c.Cache.Dir = "" }, true},
		{"none without dir", func(c *Config) { c.Cache.Backend = CacheNone; c.Cache.Dir = "" }, false},
		{"zero concurrency", func(c *Config) { c.Analysis.Concurrency = 0 }, true},
		{"zero timeout", func(c *Config) { c.Restore.Timeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if got := DefaultCacheDir(); got != filepath.Join("/tmp/xdg", "depdistill") {
		t.Errorf("DefaultCacheDir() = %q", got)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := DefaultCacheDir(); got != filepath.Join(home, ".cache", "depdistill") {
		t.Errorf("DefaultCacheDir() = %q", got)
	}
}
