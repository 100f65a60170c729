package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vaultd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:7425", cfg.Server.Addr())
	require.Equal(t, "pebble", cfg.Database.Backend)
	require.Equal(t, "sqlite", cfg.Journal.Driver)
	require.Equal(t, "static", cfg.Feeds.Source)
	require.Equal(t, "info", cfg.Log.Level)

	params, err := cfg.Bank.Params()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100_000_000), params.Cap)
	require.Equal(t, big.NewInt(1000), params.WithdrawalCeiling)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9000

[bank]
cap = "5000"
withdrawal_ceiling = "250"
native_asset = "BNB"
native_feed = "feed:bnb-usd"
native_cap_policy = "zero"
oracle_heartbeat = "30m"

[[bank.assets]]
id = "USDC"
feed = "feed:usdc-usd"
decimals = 6

[database]
backend = "memory"

[feeds]
source = "static"

[feeds.static."feed:bnb-usd"]
answer = "60000000000"
decimals = 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, path, cfg.Path())

	params, err := cfg.Bank.Params()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(5000), params.Cap)
	require.Equal(t, "zero", string(params.NativeCapPolicy))
	require.Equal(t, 30*time.Minute, cfg.Bank.OracleHeartbeat)

	require.Len(t, cfg.Bank.Assets, 1)
	require.Equal(t, "USDC", cfg.Bank.Assets[0].ID)
	require.Equal(t, "60000000000", cfg.Feeds.Static["feed:bnb-usd"].Answer)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("VAULTD_SERVER_PORT", "8100")
	t.Setenv("VAULTD_DATABASE_BACKEND", "memory")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8100, cfg.Server.Port)
	require.Equal(t, "memory", cfg.Database.Backend)
}

func TestValidationRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad cap", func(c *Config) { c.Bank.Cap = "12.5" }},
		{"negative cap", func(c *Config) { c.Bank.Cap = "-1" }},
		{"bad policy", func(c *Config) { c.Bank.NativeCapPolicy = "half" }},
		{"native asset with slash", func(c *Config) { c.Bank.NativeAsset = "E/TH" }},
		{"zero heartbeat", func(c *Config) { c.Bank.OracleHeartbeat = 0 }},
		{"unknown backend", func(c *Config) { c.Database.Backend = "rocksdb" }},
		{"backend without path", func(c *Config) { c.Database.Path = "" }},
		{"unknown feed source", func(c *Config) { c.Feeds.Source = "rest" }},
		{"websocket without url", func(c *Config) { c.Feeds.Source = "websocket"; c.Feeds.URL = "http://x" }},
		{"bad log level", func(c *Config) { c.Log.Level = "noisy" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"duplicate assets", func(c *Config) {
			c.Bank.Assets = []AssetConfig{
				{ID: "USDC", Feed: "feed:a", Decimals: 6},
				{ID: "USDC", Feed: "feed:b", Decimals: 6},
			}
		}},
		{"bad static answer", func(c *Config) {
			c.Feeds.Static = map[string]StaticFeedConfig{"feed:x": {Answer: "abc", Decimals: 8}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			require.Error(t, Validate(cfg))
		})
	}
}
