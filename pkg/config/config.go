// Package config loads depdistill settings.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional depdistill.toml (working directory, then
// $XDG_CONFIG_HOME/depdistill), DEPDISTILL_* environment variables (dots
// become underscores, e.g. DEPDISTILL_CACHE_BACKEND) and command-line flags
// bound to the returned viper instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName   = "depdistill"
	envPrefix = "DEPDISTILL"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the resolved configuration.
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Restore  RestoreConfig  `mapstructure:"restore"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

type AnalysisConfig struct {
	Libraries   bool `mapstructure:"libraries"`
	Concurrency int  `mapstructure:"concurrency"`
}

type RestoreConfig struct {
	Dotnet  string        `mapstructure:"dotnet"`
	Timeout time.Duration `mapstructure:"timeout"`
	TempDir string        `mapstructure:"temp_dir"`
}

type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	Dir       string        `mapstructure:"dir"`
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

// StoreConfig configures the result history. An empty MongoURI keeps the
// history in memory.
type StoreConfig struct {
	MongoURI string `mapstructure:"mongo_uri"`
	Database string `mapstructure:"database"`
}

// ServerConfig configures the HTTP API. A non-empty Root confines the
// restore graphs requests may read.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Root string `mapstructure:"root"`
}

// New returns a viper instance with defaults and environment binding set up.
// Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("output.format", "text")
	v.SetDefault("output.color", true)
	v.SetDefault("analysis.libraries", false)
	v.SetDefault("analysis.concurrency", 8)
	v.SetDefault("restore.dotnet", "dotnet")
	v.SetDefault("restore.timeout", 10*time.Minute)
	v.SetDefault("restore.temp_dir", "")
	v.SetDefault("cache.backend", CacheFile)
	v.SetDefault("cache.dir", DefaultCacheDir())
	v.SetDefault("cache.ttl", 7*24*time.Hour)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("store.mongo_uri", "")
	v.SetDefault("store.database", appName)
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.root", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and decodes the result. An explicit file
// must exist; otherwise a missing depdistill.toml is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheFile, CacheRedis:
	default:
		return fmt.Errorf("cache.backend must be one of none, file, redis, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheFile && c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required for the file backend")
	}
	if c.Analysis.Concurrency < 1 {
		return fmt.Errorf("analysis.concurrency must be positive, got %d", c.Analysis.Concurrency)
	}
	if c.Restore.Timeout <= 0 {
		return fmt.Errorf("restore.timeout must be positive, got %s", c.Restore.Timeout)
	}
	return nil
}

// Used reports the config file that was read, if any.
func Used(v *viper.Viper) string {
	return v.ConfigFileUsed()
}

// DefaultCacheDir returns the cache directory using XDG standard
// (~/.cache/depdistill/). It returns "" when no home directory is known.
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", appName)
}
