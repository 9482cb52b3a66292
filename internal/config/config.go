// Package config loads atomgraph configuration from YAML
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/shivavenkatesh/atomgraph/internal/splitter"
	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// Config is the full application configuration
type Config struct {
	DataDir  string             `yaml:"data_dir"` // Directory for data storage (default: ~/.atomgraph)
	Splitter types.SplitOptions `yaml:"splitter"` // Default splitting strategy
	Graph    GraphConfig        `yaml:"graph"`
	Store    StoreConfig        `yaml:"store"`
	Server   ServerConfig       `yaml:"server"`
	Cache    CacheConfig        `yaml:"cache"`
	Log      LogConfig          `yaml:"log"`
	Index    IndexConfig        `yaml:"index"`
	Workers  int                `yaml:"workers"` // Concurrent splits per build
}

// GraphConfig configures graph construction
type GraphConfig struct {
	Window int `yaml:"window"`
}

// StoreConfig configures the graph store
type StoreConfig struct {
	Path string `yaml:"path"` // Database file, relative paths resolve against DataDir
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CacheConfig configures the split result cache
type CacheConfig struct {
	Size int `yaml:"size"` // 0 disables caching
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// IndexConfig configures file indexing
type IndexConfig struct {
	Ignore     []string `yaml:"ignore"`     // Glob patterns skipped while walking
	Extensions []string `yaml:"extensions"` // Indexable extensions, empty means all text extensions
	MaxBytes   int64    `yaml:"max_bytes"`  // Files larger than this are skipped
}

// Default returns sensible defaults
func Default() Config {
	return Config{
		Splitter: types.SplitOptions{
			Strategy: splitter.DefaultStrategy,
		},
		Graph: GraphConfig{
			Window: 1,
		},
		Store: StoreConfig{
			Path: "atomgraph.db",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 3457,
		},
		Cache: CacheConfig{
			Size: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Index: IndexConfig{
			Ignore:   []string{".git", "node_modules", "vendor", "__pycache__", ".venv", "dist", "build"},
			MaxBytes: 4 * 1024 * 1024,
		},
		Workers: 4,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks every section and returns all problems found
func (c Config) Validate() error {
	var errs []error

	if _, err := splitter.FromSplitOptions(c.Splitter); err != nil {
		errs = append(errs, fmt.Errorf("splitter: %w", err))
	}
	if c.Graph.Window < 1 {
		errs = append(errs, fmt.Errorf("graph.window must be positive, got %d", c.Graph.Window))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ResolveDataDir returns the data directory with ~ expanded
func (c Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		dir = "~/.atomgraph"
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return dir, nil
}

// StorePath returns the database path resolved against the data directory
func (c Config) StorePath() (string, error) {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path, nil
	}
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Store.Path), nil
}
