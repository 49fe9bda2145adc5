package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jonathan/dice-autopilot/internal/apply"
	"github.com/jonathan/dice-autopilot/internal/auth"
	"github.com/jonathan/dice-autopilot/internal/crawl"
	"github.com/jonathan/dice-autopilot/internal/events"
	"github.com/jonathan/dice-autopilot/internal/ledger"
	"github.com/jonathan/dice-autopilot/internal/observability"
	"github.com/jonathan/dice-autopilot/internal/runner"
	"github.com/jonathan/dice-autopilot/internal/types"
)

// navInterval paces page navigations so the run looks like a person browsing.
const navInterval = 2 * time.Second

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Search, filter, and apply to matching jobs end-to-end",
	Long: `Runs the full pipeline: searches every configured query, filters the
results by keyword, skips jobs already in the ledger, and applies to whatever
remains. Ctrl-C stops the run at the next safe point; completed work is never
lost.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath string
	runQueries    []string
	runInclude    []string
	runExclude    []string
	runLimit      int
	runHeadless   bool
	runDataDir    string
	runEmail      string
	runVerbose    bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringSliceVarP(&runQueries, "query", "q", nil, "Search query (repeatable)")
	runCommand.Flags().StringSliceVar(&runInclude, "include", nil, "Keyword a job title must contain (repeatable)")
	runCommand.Flags().StringSliceVar(&runExclude, "exclude", nil, "Keyword that rejects a job title (repeatable)")
	runCommand.Flags().IntVarP(&runLimit, "limit", "l", 0, "Maximum applications per run (0 = unlimited)")
	runCommand.Flags().BoolVar(&runHeadless, "headless", false, "Run the browser without a visible window")
	runCommand.Flags().StringVar(&runDataDir, "data-dir", "", "Directory holding the ledger")
	runCommand.Flags().StringVar(&runEmail, "email", "", "Account email to sign in with")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("query") {
		cfg.Queries = runQueries
	}
	if cmd.Flags().Changed("include") {
		cfg.IncludeKeywords = runInclude
	}
	if cmd.Flags().Changed("exclude") {
		cfg.ExcludeKeywords = runExclude
	}
	if cmd.Flags().Changed("limit") {
		cfg.JobLimit = runLimit
	}
	applyCommonOverrides(cmd, &cfg, &runEmail, &runDataDir, &runHeadless, &runVerbose)

	if err := cfg.Validate(); err != nil {
		return err
	}

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

	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(os.Stdout)
	}

	hub := events.NewHub()
	r := &runner.Runner{
		Crawler: &crawl.Crawler{
			Driver:  chrome,
			Limiter: rate.NewLimiter(rate.Every(navInterval), 1),
			Verbose: cfg.Verbose,
		},
		Applier: &apply.Applier{Driver: chrome, Verbose: cfg.Verbose},
		Store:   store,
		Hub:     hub,
		Login: func(ctx context.Context) error {
			return auth.Login(ctx, chrome, creds)
		},
		Printer: printer,
		Verbose: cfg.Verbose,
	}

	session := runner.NewSession()
	go func() {
		// First signal asks the worker to stop at the next safe point.
		<-ctx.Done()
		session.Stop()
	}()

	params := runner.Params{
		Queries:  cfg.Queries,
		Include:  cfg.IncludeKeywords,
		Exclude:  cfg.ExcludeKeywords,
		JobLimit: cfg.JobLimit,
	}

	var summary types.RunSummary
	sub := hub.Subscribe()
	g := new(errgroup.Group)
	g.Go(func() error {
		defer hub.Unsubscribe(sub)
		var runErr error
		summary, runErr = r.Run(ctx, session, params)
		return runErr
	})
	g.Go(func() error {
		for evt := range sub {
			printEvent(evt)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if printer != nil {
		printer.PrintRunSummary(&summary)
		return nil
	}
	fmt.Printf("Run %s finished: %d found, %d applied, %d failed in %s\n",
		summary.RunID, summary.TotalFound, summary.Applied, summary.Failed, summary.ExecutionTime)
	return nil
}

func printEvent(evt events.Event) {
	line := fmt.Sprintf("[%s] %s (found=%d applied=%d failed=%d)",
		evt.Phase, evt.Message, evt.Found, evt.Applied, evt.Failed)
	if evt.ETA > 0 {
		line += fmt.Sprintf(" eta=%s", evt.ETA.Round(time.Second))
	}
	fmt.Println(line)
}
