package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"vaultd/internal/di"
)

// serverCmd starts the daemon. It is also the default action when no
// subcommand is given.
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the vault daemon",
	Long: `Start vaultd: open the ledger database and the operation journal,
connect the price feeds, and serve the JSON-RPC API until interrupted.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.RunE = runServer
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	container := di.New()
	provider := di.NewProvider(container, cfg, Version)
	if err := provider.RegisterAll(); err != nil {
		return err
	}

	logger, err := provider.Logger()
	if err != nil {
		return err
	}
	log := logger.WithField("component", "server")

	srv, err := provider.RPCServer()
	if err != nil {
		return err
	}
	feedRunner, err := provider.FeedRunner()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(srv.ListenAndServe)
	if feedRunner != nil {
		group.Go(func() error {
			err := feedRunner.Run(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		})
	}
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = group.Wait()

	// Close storage after the last request has drained.
	if store, jerr := provider.Journal(); jerr == nil && store != nil {
		if cerr := store.Close(); cerr != nil {
			log.WithError(cerr).Warn("closing journal failed")
		}
	}
	if db, derr := provider.LedgerDB(); derr == nil {
		if cerr := db.Close(); cerr != nil {
			log.WithError(cerr).Warn("closing ledger database failed")
		}
	}

	if err != nil {
		log.WithError(err).Error("server exited with error")
		return err
	}
	log.Info("server stopped")
	return nil
}
