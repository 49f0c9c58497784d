package config

import (
	"time"

	"github.com/vietddude/mevwatch/internal/core/domain"
	redisclient "github.com/vietddude/mevwatch/internal/infra/redis"
	"github.com/vietddude/mevwatch/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Chains    []ChainConfig      `yaml:"chains"`
	Contracts []ContractConfig   `yaml:"contracts"`
	Engine    EngineConfig       `yaml:"engine"`
	Redis     redisclient.Config `yaml:"redis"`
	Logging   LoggingConfig      `yaml:"logging"`
	Database  postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// EngineConfig holds detection engine tuning knobs.
type EngineConfig struct {
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	MaxConcurrency   int           `yaml:"max_concurrency"`
	MaxBlocksPerTick int           `yaml:"max_blocks_per_tick"`
	RetryInterval    time.Duration `yaml:"retry_interval"`
	MaxSingleValue   float64       `yaml:"max_single_value"` // native units
	MaxTotalValue    float64       `yaml:"max_total_value"`
}

// ChainConfig holds settings for a specific blockchain.
type ChainConfig struct {
	ChainID      domain.ChainID   `yaml:"id"`
	ScanInterval time.Duration    `yaml:"scan_interval"`
	Providers    []ProviderConfig `yaml:"providers"`
}

// ContractConfig names a contract to watch and the chain it lives on.
type ContractConfig struct {
	Address string         `yaml:"address"`
	ChainID domain.ChainID `yaml:"chain_id"`
}

// ProviderConfig holds settings for an RPC provider.
type ProviderConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}
