package config

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 7425)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("bank.cap", "100000000")
	v.SetDefault("bank.withdrawal_ceiling", "1000")
	v.SetDefault("bank.native_asset", "ETH")
	v.SetDefault("bank.native_feed", "feed:eth-usd")
	v.SetDefault("bank.native_decimals", 18)
	v.SetDefault("bank.native_cap_policy", "valued")
	v.SetDefault("bank.oracle_heartbeat", time.Hour)
	v.SetDefault("bank.reference_decimals", 0)
	v.SetDefault("bank.activity_limit", 256)

	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "/var/lib/vaultd/ledger")

	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.path", "/var/lib/vaultd/journal.db")
	v.SetDefault("journal.ssl_mode", "prefer")
	v.SetDefault("journal.max_open_conns", 1)
	v.SetDefault("journal.max_idle_conns", 1)
	v.SetDefault("journal.timeout", 5*time.Second)

	v.SetDefault("feeds.source", "static")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}
