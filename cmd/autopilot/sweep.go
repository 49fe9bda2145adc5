package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/dice-autopilot/internal/auth"
	"github.com/jonathan/dice-autopilot/internal/ledger"
	"github.com/jonathan/dice-autopilot/internal/sweep"
)

var sweepCommand = &cobra.Command{
	Use:   "sweep",
	Short: "Reconcile the ledger with the applications visible on the my-jobs view",
	Long: `Scans the account's applied-jobs pages newest-first, adds every new
entry to the applied reference set, and moves jobs that turn out to be applied
(for example through manual UI actions) out of the not-applied partition.`,
	RunE: sweepCmd,
}

var (
	sweepConfigPath string
	sweepHeadless   bool
	sweepDataDir    string
	sweepEmail      string
	sweepVerbose    bool
)

func init() {
	sweepCommand.Flags().StringVar(&sweepConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	sweepCommand.Flags().BoolVar(&sweepHeadless, "headless", false, "Run the browser without a visible window")
	sweepCommand.Flags().StringVar(&sweepDataDir, "data-dir", "", "Directory holding the ledger")
	sweepCommand.Flags().StringVar(&sweepEmail, "email", "", "Account email to sign in with")
	sweepCommand.Flags().BoolVarP(&sweepVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(sweepCommand)
}

func sweepCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(sweepConfigPath)
	if err != nil {
		return err
	}
	applyCommonOverrides(cmd, &cfg, &sweepEmail, &sweepDataDir, &sweepHeadless, &sweepVerbose)

	store, err := ledger.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer store.Close()

	chrome, creds, err := browserSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer chrome.Close()

	if err := auth.Login(ctx, chrome, creds); err != nil {
		return err
	}

	s := &sweep.Sweeper{Driver: chrome, Store: store, Verbose: cfg.Verbose}
	res, err := s.Sweep(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Sweep finished: %d pages scanned, %d new entries, %d moved to applied\n",
		res.PagesScanned, res.NewEntries, res.Moved)
	return nil
}
