package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/dice-autopilot/internal/apply"
	"github.com/jonathan/dice-autopilot/internal/auth"
)

var applyCommand = &cobra.Command{
	Use:   "apply <job-url>",
	Short: "Apply to a single job by URL",
	Long: `Signs in and runs the apply workflow against one job posting. Useful
for verifying the workflow against a specific posting without a full run; the
outcome is printed but not recorded in the ledger.`,
	Args: cobra.ExactArgs(1),
	RunE: applySingleCmd,
}

var (
	applyConfigPath string
	applyHeadless   bool
	applyDataDir    string
	applyEmail      string
	applyVerbose    bool
)

func init() {
	applyCommand.Flags().StringVar(&applyConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	applyCommand.Flags().BoolVar(&applyHeadless, "headless", false, "Run the browser without a visible window")
	applyCommand.Flags().StringVar(&applyDataDir, "data-dir", "", "Directory holding the ledger")
	applyCommand.Flags().StringVar(&applyEmail, "email", "", "Account email to sign in with")
	applyCommand.Flags().BoolVarP(&applyVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(applyCommand)
}

func applySingleCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(applyConfigPath)
	if err != nil {
		return err
	}
	applyCommonOverrides(cmd, &cfg, &applyEmail, &applyDataDir, &applyHeadless, &applyVerbose)

	chrome, creds, err := browserSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer chrome.Close()

	if err := auth.Login(ctx, chrome, creds); err != nil {
		return err
	}

	a := &apply.Applier{Driver: chrome, Verbose: cfg.Verbose}
	applied, err := a.Apply(ctx, args[0])
	if err != nil {
		return err
	}
	if applied {
		fmt.Println("Applied.")
	} else {
		fmt.Println("Not applied.")
	}
	return nil
}
