// Package config loads optional codeinventory settings from a TOML or YAML
// file at the workspace root.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/codeinventory/internal/category"
	"github.com/phobologic/codeinventory/internal/enumerate"
	"github.com/phobologic/codeinventory/internal/parse"
)

// FileNames are the config files Find looks for, in priority order.
var FileNames = []string{".codeinventory.toml", ".codeinventory.yaml", ".codeinventory.yml"}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds tunables for an enumeration run.
type Config struct {
	MaxEntities    int      `toml:"max_entities" yaml:"max_entities"`
	PageSize       int      `toml:"page_size" yaml:"page_size"`
	MaxFileSize    int64    `toml:"max_file_size" yaml:"max_file_size"`
	SkipDirs       []string `toml:"skip_dirs" yaml:"skip_dirs"`
	ConfigPatterns []string `toml:"config_patterns" yaml:"config_patterns"`
	LogLevel       string   `toml:"log_level" yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the config file at path. The format is chosen by extension:
// .yaml and .yml are YAML, everything else is TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Find returns the path of the first config file present in root, or ""
// when there is none.
func Find(root string) string {
	for _, name := range FileNames {
		p := filepath.Join(root, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// LoadRoot loads the config file found in root, or the defaults.
func LoadRoot(root string) (*Config, error) {
	p := Find(root)
	if p == "" {
		return Default(), nil
	}
	return Load(p)
}

func applyDefaults(cfg *Config) {
	if cfg.MaxEntities == 0 {
		cfg.MaxEntities = enumerate.DefaultMaxEntities
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = enumerate.DefaultPageSize
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = parse.DefaultMaxFileSize
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "warn"
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
}

func validate(cfg *Config) error {
	if cfg.MaxEntities < 0 {
		return fmt.Errorf("%w: max_entities must be positive, got %d", ErrInvalid, cfg.MaxEntities)
	}
	if cfg.PageSize < 0 {
		return fmt.Errorf("%w: page_size must be positive, got %d", ErrInvalid, cfg.PageSize)
	}
	if cfg.MaxFileSize < 0 {
		return fmt.Errorf("%w: max_file_size must be positive, got %d", ErrInvalid, cfg.MaxFileSize)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "quiet", "off":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, cfg.LogLevel)
	}
	for _, d := range cfg.SkipDirs {
		if strings.TrimSpace(d) == "" || strings.ContainsAny(d, `/\`) {
			return fmt.Errorf("%w: skip_dirs entry %q must be a bare directory name", ErrInvalid, d)
		}
	}
	if _, err := category.CompilePatterns(cfg.ConfigPatterns); err != nil {
		return fmt.Errorf("%w: config_patterns: %v", ErrInvalid, err)
	}
	return nil
}
