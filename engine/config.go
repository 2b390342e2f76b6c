package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the file-backed session settings. Zero values mean
// "use the default"; LoadConfig fills them in.
type Config struct {
	Data     string `yaml:"data"`
	Movies   string `yaml:"movies"`
	Scripts  string `yaml:"scripts"`
	TickMs   int    `yaml:"tick_ms"`
	LogLevel string `yaml:"log_level"`
	AppName  string `yaml:"app_name"`
	Seed     int64  `yaml:"seed"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Data:     "assets/game.blt",
		Movies:   "assets/movies.pf",
		Scripts:  "scripts",
		TickMs:   20,
		LogLevel: "info",
		AppName:  "boltcore",
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing
// file is not an error; a malformed or invalid one is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TickMs < 1 {
		return fmt.Errorf("tick_ms must be positive, got %d", c.TickMs)
	}
	if c.Data == "" {
		return fmt.Errorf("data path must not be empty")
	}
	if c.AppName == "" {
		return fmt.Errorf("app_name must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
