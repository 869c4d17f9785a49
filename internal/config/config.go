// # internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Root    string  `toml:"root"`
	Scan    Scan    `toml:"scan"`
	Exclude Exclude `toml:"exclude"`
	Watch   Watch   `toml:"watch"`
	Store   Store   `toml:"store"`
	Server  Server  `toml:"server"`
	Tracing Tracing `toml:"tracing"`
}

type Scan struct {
	Extensions []string `toml:"extensions"`
	Workers    int      `toml:"workers"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// Minimum gap between full rescans, regardless of event volume.
	MinRescanInterval time.Duration `toml:"min_rescan_interval"`
}

type Store struct {
	Path string `toml:"path"` // Empty disables the persisted declaration cache
}

type Server struct {
	Addr string `toml:"addr"`
}

type Tracing struct {
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = []string{".php"}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "vendor", "node_modules"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MinRescanInterval == 0 {
		cfg.Watch.MinRescanInterval = 2 * time.Second
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8921"
	}
}
