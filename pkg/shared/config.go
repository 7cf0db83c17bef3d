package shared

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	RegistryMemory  = "memory"
	RegistryLevelDB = "leveldb"
	RegistryEVM     = "evm"
	RegistryHCS     = "hcs"

	EnvPrefix = "DOCSIG_"
)

// Config is the process configuration for the docsig tool.
type Config struct {
	Mnemonic       Secret `env:"MNEMONIC"`
	Passphrase     Secret `env:"MNEMONIC_PASSPHRASE"`
	AccountCount   int    `env:"ACCOUNT_COUNT"   envDefault:"20"`
	DerivationPath string `env:"DERIVATION_PATH" envDefault:"m/44'/60'/0'/0"`

	Registry string `env:"REGISTRY" envDefault:"memory"`

	RPCURL          string `env:"RPC_URL"          envDefault:"http://localhost:8545"`
	ContractAddress string `env:"CONTRACT_ADDRESS"`
	ChainID         int64  `env:"CHAIN_ID"`
	WaitForReceipt  bool   `env:"WAIT_RECEIPT"     envDefault:"true"`

	LevelDBPath string `env:"LEVELDB_PATH" envDefault:".docsig/registry"`

	TopicID       string `env:"HCS_TOPIC_ID"`
	MirrorBaseURL string `env:"MIRROR_BASE_URL"`
	MirrorAPIKey  Secret `env:"MIRROR_API_KEY"`

	HistoryRate float64 `env:"HISTORY_RATE" envDefault:"0"`

	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"console"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:"127.0.0.1:9464"`
}

// LoadConfig loads .env (once) and parses DOCSIG_* variables.
func LoadConfig() (Config, error) {
	LoadDotEnv()

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the provided input value.
func (c *Config) Validate() error {
	c.Registry = strings.ToLower(strings.TrimSpace(c.Registry))
	if c.Registry == "" {
		c.Registry = RegistryMemory
	}
	switch c.Registry {
	case RegistryMemory, RegistryLevelDB, RegistryEVM, RegistryHCS:
	default:
		return fmt.Errorf("unsupported registry backend %q", c.Registry)
	}

	if c.AccountCount < 1 || c.AccountCount > 1000 {
		return fmt.Errorf("account count must be between 1 and 1000, got %d", c.AccountCount)
	}
	if c.HistoryRate < 0 {
		return fmt.Errorf("history rate cannot be negative")
	}
	if c.Registry == RegistryEVM && strings.TrimSpace(c.ContractAddress) == "" {
		return fmt.Errorf("%sCONTRACT_ADDRESS is required for the evm registry", EnvPrefix)
	}
	if c.Registry == RegistryLevelDB && strings.TrimSpace(c.LevelDBPath) == "" {
		return fmt.Errorf("%sLEVELDB_PATH is required for the leveldb registry", EnvPrefix)
	}
	return nil
}
