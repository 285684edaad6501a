package internal

import (
	"os"

	"github.com/pelletier/go-toml"
	"tlog.app/go/errors"
)

// DefaultConfigFile is looked up in the working directory when no file is given.
const DefaultConfigFile = "jackc.toml"

type Config struct {
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

type OutputConfig struct {
	// Dir receives every .vm file. Empty means next to its .jack source.
	Dir       string `toml:"dir"`
	Extension string `toml:"extension" default:".vm"`
	// Check runs the vm checker over every emitted unit before it is saved.
	Check bool `toml:"check" default:"true"`
}

type LogConfig struct {
	// Verbose is a tlog topic filter like "symbols,labels".
	Verbose string `toml:"verbose"`
}

func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Extension: ".vm", Check: true},
	}
}

// LoadConfig reads path over the defaults. A missing file leaves the defaults in place.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err = toml.Unmarshal(content, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config %v", path)
	}
	if cfg.Output.Extension == "" {
		cfg.Output.Extension = ".vm"
	}
	return cfg, nil
}
