package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config.yaml"

// Load builds the configuration from a YAML file overlaid with environment
// variables (ENV wins, env-default tags fill the rest). The file path comes
// from CONFIG_PATH; without it, ./config.yaml is used when present and pure
// ENV+defaults otherwise. An explicitly named file must exist.
func Load() (*Config, error) {
	var cfg Config

	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit {
		path = defaultConfigPath
	}

	switch _, err := os.Stat(path); {
	case err == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}
