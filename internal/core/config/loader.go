package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Engine.FetchTimeout == 0 {
		cfg.Engine.FetchTimeout = 10 * time.Second
	}
	if cfg.Engine.MaxConcurrency == 0 {
		cfg.Engine.MaxConcurrency = 4
	}
	if cfg.Engine.MaxBlocksPerTick == 0 {
		cfg.Engine.MaxBlocksPerTick = 10
	}
	if cfg.Engine.RetryInterval == 0 {
		cfg.Engine.RetryInterval = 30 * time.Second
	}
	if cfg.Engine.MaxSingleValue == 0 {
		cfg.Engine.MaxSingleValue = 10
	}
	if cfg.Engine.MaxTotalValue == 0 {
		cfg.Engine.MaxTotalValue = 50
	}

	for i := range cfg.Chains {
		if cfg.Chains[i].ScanInterval == 0 {
			cfg.Chains[i].ScanInterval = 12 * time.Second
		}
	}

	return &cfg, nil
}
