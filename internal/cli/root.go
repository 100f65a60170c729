// Package cli implements the vaultd command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vaultd/internal/config"
)

// Version is overridden at build time with -ldflags.
var Version = "0.1.0-dev"

var (
	// Global flags
	configFile string
	debug      bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vaultd",
	Short: "vaultd - custodial vault daemon",
	Long: `vaultd is a custodial vault daemon: it keeps per-user, per-asset
balances in a durable ledger, values the custodied pool against external
price feeds, and enforces a global value cap and a per-transaction native
withdrawal ceiling. Operations are exposed over a JSON-RPC API.`,
	Version: Version,
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output to console")
}

// loadConfig loads the configuration honoring the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	if quiet {
		cfg.Log.Level = "error"
	}
	return cfg, nil
}
