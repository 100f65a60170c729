// Package config loads and validates the daemon configuration from TOML
// files and VAULTD_-prefixed environment variables.
package config

import (
	"fmt"
	"math/big"
	"time"

	"vaultd/internal/core/bank"
	"vaultd/internal/storage/journal"
)

// Config is the complete vaultd configuration, mirroring vaultd.toml.
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Bank     BankConfig     `toml:"bank" mapstructure:"bank"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Journal  journal.Config `toml:"journal" mapstructure:"journal"`
	Feeds    FeedsConfig    `toml:"feeds" mapstructure:"feeds"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`

	// configPath remembers where the config was loaded from.
	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig configures the JSON-RPC surface.
type ServerConfig struct {
	Host string `toml:"host" mapstructure:"host"`
	Port int    `toml:"port" mapstructure:"port"`

	// AdminToken authorizes admin-only methods. An empty token disables
	// them entirely.
	AdminToken string `toml:"admin_token" mapstructure:"admin_token"`

	ReadTimeout     time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BankConfig configures the accounting engine. Big integers are carried as
// decimal strings so TOML and environment variables cannot silently truncate
// them.
type BankConfig struct {
	// Cap is the global pool-value ceiling in reference units.
	Cap string `toml:"cap" mapstructure:"cap"`

	// WithdrawalCeiling is the per-transaction native withdrawal ceiling
	// in reference units.
	WithdrawalCeiling string `toml:"withdrawal_ceiling" mapstructure:"withdrawal_ceiling"`

	NativeAsset    string `toml:"native_asset" mapstructure:"native_asset"`
	NativeFeed     string `toml:"native_feed" mapstructure:"native_feed"`
	NativeDecimals uint8  `toml:"native_decimals" mapstructure:"native_decimals"`

	// NativeCapPolicy is "valued" or "zero".
	NativeCapPolicy string `toml:"native_cap_policy" mapstructure:"native_cap_policy"`

	// OracleHeartbeat is the maximum tolerated age of a feed observation.
	OracleHeartbeat time.Duration `toml:"oracle_heartbeat" mapstructure:"oracle_heartbeat"`

	// ReferenceDecimals is the precision reference values are carried at.
	ReferenceDecimals uint8 `toml:"reference_decimals" mapstructure:"reference_decimals"`

	// ActivityLimit bounds the in-memory recent-activity tail.
	ActivityLimit int `toml:"activity_limit" mapstructure:"activity_limit"`

	// Assets pre-registers catalog entries at startup.
	Assets []AssetConfig `toml:"assets" mapstructure:"assets"`
}

// AssetConfig pre-registers one cataloged asset.
type AssetConfig struct {
	ID       string `toml:"id" mapstructure:"id"`
	Feed     string `toml:"feed" mapstructure:"feed"`
	Decimals uint8  `toml:"decimals" mapstructure:"decimals"`
}

// Params converts the validated bank section into engine parameters.
func (b BankConfig) Params() (bank.Params, error) {
	cap, ok := new(big.Int).SetString(b.Cap, 10)
	if !ok {
		return bank.Params{}, fmt.Errorf("invalid bank cap %q", b.Cap)
	}
	ceiling, ok := new(big.Int).SetString(b.WithdrawalCeiling, 10)
	if !ok {
		return bank.Params{}, fmt.Errorf("invalid withdrawal ceiling %q", b.WithdrawalCeiling)
	}
	policy, err := bank.ParseCapPolicy(b.NativeCapPolicy)
	if err != nil {
		return bank.Params{}, err
	}
	return bank.Params{
		Cap:               cap,
		WithdrawalCeiling: ceiling,
		NativeAsset:       bank.AssetID(b.NativeAsset),
		NativeFeed:        b.NativeFeed,
		NativeDecimals:    b.NativeDecimals,
		NativeCapPolicy:   policy,
	}, nil
}

// DatabaseConfig selects the balance ledger backend.
type DatabaseConfig struct {
	// Backend is "pebble", "leveldb", "bbolt" or "memory".
	Backend string `toml:"backend" mapstructure:"backend"`
	Path    string `toml:"path" mapstructure:"path"`
}

// FeedsConfig selects the price feed source.
type FeedsConfig struct {
	// Source is "static" or "websocket".
	Source string `toml:"source" mapstructure:"source"`

	// URL is the stream endpoint for the websocket source.
	URL string `toml:"url" mapstructure:"url"`

	// Static configures fixed rounds for the static source, keyed by feed
	// reference. Answers are decimal strings.
	Static map[string]StaticFeedConfig `toml:"static" mapstructure:"static"`
}

// StaticFeedConfig is one fixed feed round.
type StaticFeedConfig struct {
	Answer   string `toml:"answer" mapstructure:"answer"`
	Decimals uint8  `toml:"decimals" mapstructure:"decimals"`
}

// LogConfig configures structured logging and rotation.
type LogConfig struct {
	// Level is a logrus level name.
	Level string `toml:"level" mapstructure:"level"`

	// Format is "json" or "text".
	Format string `toml:"format" mapstructure:"format"`

	// File enables rotated file output when set; stderr otherwise.
	File       string `toml:"file" mapstructure:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
}

// Path returns where the configuration was loaded from, empty when running
// on defaults alone.
func (c *Config) Path() string {
	return c.configPath
}
