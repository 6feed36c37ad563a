package flowgen

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/mcuadros/go-defaults"

	"github.com/takehaya/flowgen/pkg/logger"
)

const envPrefix = "flowgen"

type Config struct {
	LoggerConfig logger.Config `envconfig:"LOG"`

	// hardware descriptor, JSON or YAML
	Descriptor string `envconfig:"DESCRIPTOR" default:"/etc/flowgen/descriptor.json"`
	// snapshot loaded at start and written back by mutating commands
	Snapshot string `envconfig:"SNAPSHOT"`
}

// LoadConfig returns the defaults overridden by FLOWGEN_* environment
// variables, e.g. FLOWGEN_DESCRIPTOR or FLOWGEN_LOG_VERBOSE.
func LoadConfig() (Config, error) {
	var cfg Config
	defaults.SetDefaults(&cfg)
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Descriptor == "" {
		return fmt.Errorf("descriptor is required")
	}
	if c.LoggerConfig.Verbose < 0 {
		return fmt.Errorf("verbose must not be negative")
	}
	if c.LoggerConfig.File != "" && c.LoggerConfig.MaxSizeMB <= 0 {
		return fmt.Errorf("log file max size must be positive")
	}
	return nil
}
