// Package config loads the tool's settings from an optional YAML file,
// falling back to defaults that match a stock editor install.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wwisetools/hdrscope/util"
)

// DefaultFileName is looked for in the user's home directory when no
// explicit config path is given.
const DefaultFileName = ".hdrscope.yaml"

// Config holds the tool's settings.
type Config struct {
	// Endpoint is the editor's authoring-API host:port.
	Endpoint string `yaml:"endpoint"`
	// Listen is the loopback address the web shell serves on.
	Listen string `yaml:"listen"`
	// Verbose enables debug-level logging.
	Verbose bool `yaml:"verbose"`
}

// Default returns the settings used when no file overrides them.
func Default() Config {
	return Config{
		Endpoint: "127.0.0.1:8080",
		Listen:   "127.0.0.1:8735",
	}
}

// Load reads the config at path. An empty path means the default location
// in the user's home directory; a missing file there is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(util.UserHome(), DefaultFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
