package satangles

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the process-wide caching configuration.
//
// It is injected explicitly into the components that need it; nothing in this
// module reads ambient global state. The zero value disables all caching.
type Config struct {
	// CacheDir is the default root directory for cached artifacts. An empty
	// value disables caching for every call that does not supply its own
	// per-call override.
	CacheDir string `yaml:"cache_dir"`

	// CacheLonLats enables caching of the valid lon/lat grid extraction.
	CacheLonLats bool `yaml:"cache_lonlats"`

	// CacheSensorAngles enables caching of the sensor angle computation.
	CacheSensorAngles bool `yaml:"cache_sensor_angles"`
}

// Flag returns the boolean feature flag registered under key.
// Unknown keys are false, which disables caching for that function family.
func (c Config) Flag(key string) bool {
	switch key {
	case "cache_lonlats":
		return c.CacheLonLats
	case "cache_sensor_angles":
		return c.CacheSensorAngles
	default:
		return false
	}
}

// LoadConfig reads a YAML config file.
//
// Missing keys keep their zero values, so a minimal file containing only
// cache_dir is valid.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}
