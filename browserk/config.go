package browserk

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config for a locate run
type Config struct {
	URLs              []string `toml:"urls" yaml:"urls"`                             // targets, urls or file paths
	Locators          []string `toml:"locators" yaml:"locators"`                     // strategy=query, in search order
	First             bool     `toml:"first" yaml:"first"`                           // only the first element, not found is an error
	UseBrowser        bool     `toml:"use_browser" yaml:"use_browser"`               // search a live chrome tab instead of the static document
	NumBrowsers       int      `toml:"num_browsers" yaml:"num_browsers"`             // chrome processes in the pool
	Concurrency       int      `toml:"concurrency" yaml:"concurrency"`               // targets searched at once
	NavigationTimeout int      `toml:"navigation_timeout" yaml:"navigation_timeout"` // seconds
	ChromePath        string   `toml:"chrome_path" yaml:"chrome_path"`
	LogLevel          string   `toml:"log_level" yaml:"log_level"`
	AllowFiles        bool     `toml:"allow_files" yaml:"allow_files"` // serve: let clients search local files
}

// DefaultConfig values, used for anything a file or flag leaves unset
func DefaultConfig() *Config {
	return &Config{
		URLs:              make([]string, 0),
		Locators:          make([]string, 0),
		NumBrowsers:       1,
		Concurrency:       4,
		NavigationTimeout: 30,
		LogLevel:          "info",
	}
}

// NavTimeout as a duration
func (c *Config) NavTimeout() time.Duration {
	if c.NavigationTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeout) * time.Second
}

// LoadConfig reads a .toml, .yaml or .yml file over the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.NewDecoder(strings.NewReader(string(data))).Decode(cfg); err != nil {
			return nil, errors.Wrap(err, "decoding toml config")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "decoding yaml config")
		}
	default:
		return nil, errors.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return cfg, nil
}
