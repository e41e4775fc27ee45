package config

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultBackend      = "sim"
	DefaultInitialWords = 4096
	DefaultServerAddr   = ":9200"

	minInitialWords = 16
)

// Config is the embedding configuration for one process.
type Config struct {
	Backend    string        `toml:"backend"`
	CheckStale bool          `toml:"check_stale"`
	Heap       HeapConfig    `toml:"heap"`
	Metrics    MetricsConfig `toml:"metrics"`
	Server     ServerConfig  `toml:"server"`
}

type HeapConfig struct {
	InitialWords int  `toml:"initial_words"`
	Stress       bool `toml:"stress"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Backend:    DefaultBackend,
		CheckStale: false,
		Heap:       HeapConfig{InitialWords: DefaultInitialWords},
		Metrics:    MetricsConfig{Enabled: true},
		Server:     ServerConfig{Addr: DefaultServerAddr},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := gotoml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Backend) == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.Heap.InitialWords == 0 {
		cfg.Heap.InitialWords = DefaultInitialWords
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Backend) == "" {
		return fmt.Errorf("config missing backend")
	}
	if cfg.Heap.InitialWords < minInitialWords {
		return fmt.Errorf("heap.initial_words must be at least %d, got %d", minInitialWords, cfg.Heap.InitialWords)
	}
	if _, _, err := net.SplitHostPort(strings.TrimSpace(cfg.Server.Addr)); err != nil {
		return fmt.Errorf("server.addr invalid: %w", err)
	}
	for i, origin := range cfg.Server.CorsOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("server.cors_origins[%d] is empty", i)
		}
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
