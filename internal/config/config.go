package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	model "auction-rooms/internal/models"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Registry struct {
	SweepInterval string `yaml:"sweepInterval"` // e.g. "10m"
}

type Config struct {
	HTTP     HTTP             `yaml:"http"`
	Registry Registry         `yaml:"registry"`
	Room     model.RoomConfig `yaml:"room"`
}

// Load reads the yaml config from CONFIG_PATH (default ./config.yaml). A
// missing file is not an error; the defaults let the binary run bare.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config.yaml"
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %v", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %v", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Registry.SweepInterval == "" {
		c.Registry.SweepInterval = "10m"
	}
	c.Room = c.Room.Normalize()
}

// SweepInterval parses the registry sweep cadence, falling back to def on a
// malformed or non-positive value.
func (c *Config) SweepInterval(def time.Duration) time.Duration {
	if d, err := time.ParseDuration(c.Registry.SweepInterval); err == nil && d > 0 {
		return d
	}
	return def
}
