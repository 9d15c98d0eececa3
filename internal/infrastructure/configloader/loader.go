package configloader

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"token_sweeper/internal/domain/entity"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                string `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int    `yaml:"idleTimeoutSeconds"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LiteAPIConfig holds settings for the quoting/execution service and its
// read endpoints (balances, prices, metadata, screening).
type LiteAPIConfig struct {
	BaseURL                 string  `yaml:"baseURL"`
	RequestTimeoutMillis    int64   `yaml:"requestTimeoutMillis"`
	RateLimitPerSecond      float64 `yaml:"rateLimitPerSecond"`
	MaxIDsPerPriceRequest   int     `yaml:"maxIdsPerPriceRequest"`
	MetadataCacheTTLMinutes int     `yaml:"metadataCacheTTLMinutes"`
	MaxConcurrentLookups    int     `yaml:"maxConcurrentLookups"`
}

// SignerConfig holds settings for the wallet signing bridge.
type SignerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// SweepConfig holds the conversion policy knobs. The minimum-value threshold
// and the risk-tag taxonomy are external-service-defined constants, so they
// live in configuration rather than code.
type SweepConfig struct {
	WalletAddress          string                 `yaml:"walletAddress"`
	TargetAssetID          string                 `yaml:"targetAssetId"`
	NativeAssetID          string                 `yaml:"nativeAssetId"`
	WrappedNativeAssetID   string                 `yaml:"wrappedNativeAssetId"`
	MinValueUSD            decimal.Decimal        `yaml:"minValueUsd"`
	NotSellableTag         string                 `yaml:"notSellableTag"`
	ShieldChunkSize        int                    `yaml:"shieldChunkSize"`
	DefaultSelectionPolicy entity.SelectionPolicy `yaml:"defaultSelectionPolicy"`
}

// ProtectedAssetIDs returns the identifiers no selection policy may
// auto-select: the conversion target and the wrapped native asset.
func (c SweepConfig) ProtectedAssetIDs() []string {
	return []string{c.TargetAssetID, c.WrappedNativeAssetID}
}

// Config is the top-level configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	LiteAPI LiteAPIConfig `yaml:"liteAPI"`
	Signer  SignerConfig  `yaml:"signer"`
	Sweep   SweepConfig   `yaml:"sweep"`
}

// Load reads the YAML configuration file from the given path, unmarshals it
// and applies defaults for everything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if cfg.Sweep.TargetAssetID == "" {
		return nil, fmt.Errorf("sweep.targetAssetId is required")
	}
	if cfg.Sweep.NativeAssetID != "" && cfg.Sweep.WrappedNativeAssetID == "" {
		return nil, fmt.Errorf("sweep.wrappedNativeAssetId is required when sweep.nativeAssetId is set")
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}

	if cfg.LiteAPI.BaseURL == "" {
		cfg.LiteAPI.BaseURL = "https://lite-api.jup.ag"
	}
	if cfg.LiteAPI.RequestTimeoutMillis <= 0 {
		cfg.LiteAPI.RequestTimeoutMillis = 10000
	}
	if cfg.LiteAPI.RateLimitPerSecond <= 0 {
		cfg.LiteAPI.RateLimitPerSecond = 10
	}
	if cfg.LiteAPI.MaxIDsPerPriceRequest <= 0 {
		cfg.LiteAPI.MaxIDsPerPriceRequest = 50
	}
	if cfg.LiteAPI.MetadataCacheTTLMinutes <= 0 {
		cfg.LiteAPI.MetadataCacheTTLMinutes = 60
	}
	if cfg.LiteAPI.MaxConcurrentLookups <= 0 {
		cfg.LiteAPI.MaxConcurrentLookups = 5
	}

	if cfg.Signer.RequestTimeoutMillis <= 0 {
		cfg.Signer.RequestTimeoutMillis = 60000
	}

	if cfg.Sweep.MinValueUSD.IsZero() {
		cfg.Sweep.MinValueUSD = decimal.RequireFromString("0.01")
	}
	if cfg.Sweep.NotSellableTag == "" {
		cfg.Sweep.NotSellableTag = "NOT_SELLABLE"
	}
	if cfg.Sweep.ShieldChunkSize <= 0 {
		cfg.Sweep.ShieldChunkSize = 10
	}
	if cfg.Sweep.DefaultSelectionPolicy == "" {
		cfg.Sweep.DefaultSelectionPolicy = entity.PolicySelectNone
	}
}
