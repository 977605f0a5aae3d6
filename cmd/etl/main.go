// Command fiindo-etl fetches financial data from the Fiindo API, computes
// per-ticker ratios and per-industry aggregates, and stores them in SQLite.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/collector"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/config"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/logging"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/pipeline"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/recorder"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/report"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg    *config.Config
	logger arbor.ILogger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "fiindo-etl",
	Short:         "Fiindo financial ratio ETL",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		if cfgPath == "" {
			cfgPath = os.Getenv("CONFIG_PATH")
		}
		if cfgPath == "" {
			cfgPath = "configs/config.yaml"
		}

		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		logger = logging.NewLogger(cfg.Logging.Level, cfg.Logging.Outputs, cfg.Logging.FilePath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: configs/config.yaml or $CONFIG_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	runCmd.Flags().Bool("dry-run", false, "process symbols without writing to the database")
	runCmd.Flags().Bool("mock", false, "use built-in sample data instead of the Fiindo API")
	runCmd.Flags().String("summary-file", "", "write the run summary as JSON to this path")
	statusCmd.Flags().String("summary-file", "data/last_run.json", "run summary written by 'run --summary-file'")

	rootCmd.AddCommand(runCmd, tickersCmd, industriesCmd, statusCmd, versionCmd)
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ETL once",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		useMock, _ := cmd.Flags().GetBool("mock")
		summaryFile, _ := cmd.Flags().GetString("summary-file")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if d, _ := cfg.GetRunTimeout(); d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}

		fetcher, err := newFetcher(useMock)
		if err != nil {
			return err
		}
		logger.Info().Str("source", fetcher.Name()).Bool("dry_run", dryRun).Msg("Fiindo ETL starting")

		var rec recorder.Recorder
		if dryRun {
			rec = recorder.NewNoopRecorder()
		} else {
			sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
			if err != nil {
				return fmt.Errorf("init sqlite recorder: %w", err)
			}
			defer sr.Close()
			rec = sr
		}

		p := pipeline.New(fetcher, rec, pipeline.Options{
			Industries: cfg.ETL.Industries,
			Workers:    cfg.ETL.Workers,
			DryRun:     dryRun,
		}, logger)

		summary, err := p.Run(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("ETL run failed")
			return err
		}

		fmt.Print(report.FormatRunSummary(summary))
		if summaryFile != "" {
			if err := report.SaveSummary(summaryFile, summary); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
		}
		return nil
	},
}

func newFetcher(useMock bool) (collector.Fetcher, error) {
	if useMock {
		return sampleFetcher(), nil
	}
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, err
	}
	return collector.NewFiindoFetcher(cfg.API.BaseURL, cfg.API.Auth, cfg.Proxy,
		collector.WithLogger(logger),
		collector.WithTimeout(timeout),
		collector.WithRetries(cfg.GetRetries()),
		collector.WithRateLimit(cfg.GetRateLimit()),
	), nil
}

// --- Query Commands ---

var tickersCmd = &cobra.Command{
	Use:   "tickers [symbol]",
	Short: "Show stored ticker results",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			return err
		}
		defer rec.Close()

		ctx := cmd.Context()
		var tickers []model.TickerResult
		if len(args) == 1 {
			t, err := rec.GetTickerBySymbol(ctx, args[0])
			if errors.Is(err, recorder.ErrNotFound) {
				return fmt.Errorf("no stored result for %s", args[0])
			}
			if err != nil {
				return err
			}
			tickers = []model.TickerResult{*t}
		} else if tickers, err = rec.GetAllTickers(ctx); err != nil {
			return err
		}
		fmt.Print(report.FormatTickers(tickers))
		return nil
	},
}

var industriesCmd = &cobra.Command{
	Use:   "industries [name]",
	Short: "Show stored industry aggregates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			return err
		}
		defer rec.Close()

		ctx := cmd.Context()
		var aggs []model.IndustryAggregate
		if len(args) == 1 {
			a, err := rec.GetIndustryAggregateByName(ctx, args[0])
			if errors.Is(err, recorder.ErrNotFound) {
				return fmt.Errorf("no aggregate stored for %q", args[0])
			}
			if err != nil {
				return err
			}
			aggs = []model.IndustryAggregate{*a}
		} else if aggs, err = rec.GetAllIndustryAggregates(ctx); err != nil {
			return err
		}
		fmt.Print(report.FormatIndustryAggregates(aggs))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the summary of the last recorded run",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("summary-file")
		s, err := report.LoadSummary(path)
		if err != nil {
			return fmt.Errorf("read summary: %w", err)
		}
		fmt.Print(report.FormatRunSummary(s))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fiindo-etl %s (%s)\n", version, commit)
	},
}
