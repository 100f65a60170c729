package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vaultd/internal/di"
	"vaultd/internal/storage/snapshot"
)

var (
	snapshotCompression string
	snapshotVerify      bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export and inspect state snapshots",
}

// snapshotExportCmd writes a point-in-time image of the bank state. The
// daemon must not be running against the same ledger database.
var snapshotExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the current state to a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		container := di.New()
		provider := di.NewProvider(container, cfg, Version)
		if err := provider.RegisterAll(); err != nil {
			return err
		}
		b, err := provider.Bank()
		if err != nil {
			return err
		}
		defer func() {
			if db, derr := provider.LedgerDB(); derr == nil {
				db.Close()
			}
			if store, jerr := provider.Journal(); jerr == nil && store != nil {
				store.Close()
			}
		}()

		doc, err := snapshot.Take(b)
		if err != nil {
			return err
		}
		compressor, err := snapshot.Get(snapshotCompression)
		if err != nil {
			return err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := snapshot.Write(f, doc, compressor); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		if snapshotVerify {
			if err := verifySnapshot(args[0], doc); err != nil {
				return err
			}
		}
		if !quiet {
			fmt.Printf("snapshot written to %s (%d balances, %d assets)\n",
				args[0], len(doc.Balances), len(doc.Assets))
			if snapshotVerify {
				fmt.Println("snapshot verified")
			}
		}
		return nil
	},
}

// verifySnapshot re-reads the file at path and checks that it decodes to
// exactly the document that was exported.
func verifySnapshot(path string, want snapshot.Document) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("verifying snapshot: %w", err)
	}
	defer f.Close()

	got, err := snapshot.Read(f)
	if err != nil {
		return fmt.Errorf("verifying snapshot: %w", err)
	}

	switch {
	case !got.TakenAt.Equal(want.TakenAt),
		got.NativeAsset != want.NativeAsset,
		got.Deposits != want.Deposits,
		got.Withdrawals != want.Withdrawals,
		len(got.Assets) != len(want.Assets),
		len(got.Balances) != len(want.Balances):
		return fmt.Errorf("verifying snapshot: %s does not match the exported state", path)
	}
	for i, asset := range want.Assets {
		if got.Assets[i] != asset {
			return fmt.Errorf("verifying snapshot: %s does not match the exported state", path)
		}
	}
	for i, balance := range want.Balances {
		if got.Balances[i] != balance {
			return fmt.Errorf("verifying snapshot: %s does not match the exported state", path)
		}
	}
	return nil
}

// snapshotInspectCmd prints a snapshot summary without touching any state.
var snapshotInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print a snapshot file summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		doc, err := snapshot.Read(f)
		if err != nil {
			return err
		}

		fmt.Printf("taken at:     %s\n", doc.TakenAt)
		fmt.Printf("native asset: %s\n", doc.NativeAsset)
		fmt.Printf("deposits:     %d\n", doc.Deposits)
		fmt.Printf("withdrawals:  %d\n", doc.Withdrawals)
		fmt.Printf("assets:       %d\n", len(doc.Assets))
		for _, asset := range doc.Assets {
			fmt.Printf("  %s  feed=%s decimals=%d\n", asset.ID, asset.Feed, asset.Decimals)
		}
		fmt.Printf("balances:     %d\n", len(doc.Balances))
		for _, balance := range doc.Balances {
			fmt.Printf("  %s/%s  %s\n", balance.Asset, balance.User, balance.Amount)
		}
		return nil
	},
}

func init() {
	snapshotExportCmd.Flags().StringVar(&snapshotCompression, "compression", "lz4", "snapshot compression (none, lz4)")
	snapshotExportCmd.Flags().BoolVar(&snapshotVerify, "verify", false, "re-read the written snapshot and check it matches")
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotInspectCmd)
	rootCmd.AddCommand(snapshotCmd)
}
