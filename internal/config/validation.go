package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate checks a loaded configuration for errors that would otherwise
// surface as runtime failures deep in the daemon.
func Validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	if err := validateBank(cfg.Bank); err != nil {
		return err
	}

	switch cfg.Database.Backend {
	case "pebble", "leveldb", "bbolt":
		if cfg.Database.Path == "" {
			return fmt.Errorf("database.path required for backend %q", cfg.Database.Backend)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database.backend %q", cfg.Database.Backend)
	}

	if err := cfg.Journal.Validate(); err != nil {
		return err
	}

	if err := validateFeeds(cfg.Feeds); err != nil {
		return err
	}

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("unknown log.level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log.format %q", cfg.Log.Format)
	}
	return nil
}

func validateBank(b BankConfig) error {
	// Params re-parses the strings; calling it here surfaces cap and policy
	// errors at load time.
	params, err := b.Params()
	if err != nil {
		return err
	}
	if params.Cap.Sign() < 0 {
		return fmt.Errorf("bank.cap must not be negative")
	}
	if params.WithdrawalCeiling.Sign() < 0 {
		return fmt.Errorf("bank.withdrawal_ceiling must not be negative")
	}
	if b.NativeAsset == "" {
		return fmt.Errorf("bank.native_asset must not be empty")
	}
	if strings.Contains(b.NativeAsset, "/") {
		return fmt.Errorf("bank.native_asset must not contain '/'")
	}
	if b.NativeFeed == "" {
		return fmt.Errorf("bank.native_feed must not be empty")
	}
	if b.OracleHeartbeat <= 0 {
		return fmt.Errorf("bank.oracle_heartbeat must be positive")
	}
	if b.ActivityLimit <= 0 {
		return fmt.Errorf("bank.activity_limit must be positive")
	}

	seen := make(map[string]bool, len(b.Assets))
	for _, asset := range b.Assets {
		if asset.ID == "" || asset.Feed == "" {
			return fmt.Errorf("bank.assets entries need an id and a feed")
		}
		if seen[asset.ID] {
			return fmt.Errorf("bank.assets lists %q twice", asset.ID)
		}
		seen[asset.ID] = true
	}
	return nil
}

func validateFeeds(f FeedsConfig) error {
	switch f.Source {
	case "static":
		for ref, round := range f.Static {
			if _, ok := new(big.Int).SetString(round.Answer, 10); !ok {
				return fmt.Errorf("feeds.static[%s].answer %q is not a decimal integer", ref, round.Answer)
			}
		}
	case "websocket":
		if !strings.HasPrefix(f.URL, "ws://") && !strings.HasPrefix(f.URL, "wss://") {
			return fmt.Errorf("feeds.url %q must be a ws:// or wss:// endpoint", f.URL)
		}
	default:
		return fmt.Errorf("unknown feeds.source %q", f.Source)
	}
	return nil
}
