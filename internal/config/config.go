package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBatchSize = 100
	DefaultWorkers   = 1
)

type Config struct {
	ClaudeRoot string `toml:"claude_root"`
	DBPath     string `toml:"db_path"`
	BatchSize  int    `toml:"batch_size"`
	Workers    int    `toml:"workers"`
	Verbose    bool   `toml:"verbose"`
}

// Load returns the defaults overlaid with ~/.config/cclt/config.toml, or the
// file named by $CCLT_CONFIG.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ClaudeRoot: filepath.Join(home, ".claude", "projects"),
		DBPath:     filepath.Join(home, ".config", "cclt", "cclt.db"),
		BatchSize:  DefaultBatchSize,
		Workers:    DefaultWorkers,
	}

	cfgPath := os.Getenv("CCLT_CONFIG")
	if cfgPath == "" {
		cfgPath = filepath.Join(home, ".config", "cclt", "config.toml")
	}
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	cfg.ClaudeRoot = expandHome(cfg.ClaudeRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
