// Command etl turns sportradar match summaries into analysis tables.
//
// Usage:
//
//	etl fetch --season sr:season:118689
//	etl build --format csv,sqlite
//	etl summary --json
//	etl runs --limit 10
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/riskibarqy/matchstats-etl/internal/app"
	"github.com/riskibarqy/matchstats-etl/internal/config"
	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	"github.com/riskibarqy/matchstats-etl/internal/observability"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
	"github.com/riskibarqy/matchstats-etl/internal/usecase"
)

type rootOptions struct {
	gamesDir  string
	outputDir string
	formats   []string
	statsOnly bool
}

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "etl",
		Short:        "Match statistics ETL",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.gamesDir, "games-dir", "", "Directory of match summary XML files (default $GAMES_DIR)")
	root.PersistentFlags().StringVar(&opts.outputDir, "output-dir", "", "Directory for file outputs (default $OUTPUT_DIR)")
	root.PersistentFlags().StringSliceVar(&opts.formats, "format", nil, "Output formats: csv, jsonl, sqlite, postgres (default $OUTPUT_FORMATS)")
	root.PersistentFlags().BoolVar(&opts.statsOnly, "stats-only", false, "Extract only the event id from each summary")

	root.AddCommand(buildCmd(opts))
	root.AddCommand(fetchCmd(opts))
	root.AddCommand(summaryCmd(opts))
	root.AddCommand(runsCmd(opts))
	return root
}

// applyOverrides layers command line flags over the environment config.
func applyOverrides(cfg config.Config, opts *rootOptions, flagChanged func(string) bool) (config.Config, error) {
	if v := strings.TrimSpace(opts.gamesDir); v != "" {
		cfg.GamesDir = v
	}
	if v := strings.TrimSpace(opts.outputDir); v != "" {
		cfg.OutputDir = v
	}
	if len(opts.formats) > 0 {
		formats := make([]string, 0, len(opts.formats))
		for _, f := range opts.formats {
			if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
				formats = append(formats, f)
			}
		}
		cfg.OutputFormats = formats
	}
	if flagChanged("stats-only") {
		cfg.StatsOnly = opts.statsOnly
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// withApp loads config, starts observability and wires the app for one
// command run.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg, err = applyOverrides(cfg, opts, func(name string) bool { return cmd.Flags().Changed(name) })
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel).Named(cmd.Name())
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("pyroscope stop failed", "error", err)
		}
	}()

	ctx, span := otel.Tracer("matchstats-etl/cmd/etl").Start(cmd.Context(), "etl."+cmd.Name())
	defer span.End()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "build app", "error", err)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	if err := fn(ctx, a); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "command failed", "command", cmd.Name(), "error", err)
		return err
	}
	return nil
}

func buildCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Extract the games directory into events, team and player tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				result, err := a.Corpus.ProcessSource(ctx, a.Games)
				if err != nil {
					return err
				}

				exported, err := a.Export.Export(ctx, a.Games.Root(), result)
				out := cmd.OutOrStdout()
				if errors.Is(err, usecase.ErrNothingToPersist) {
					fmt.Fprintf(out, "nothing to persist: no events extracted from %d document(s)\n", result.Report.DocumentsSeen)
					printFailures(out, result.Report.Failures)
					return nil
				}

				fmt.Fprintf(out, "run %s\n", exported.RunID)
				for _, w := range exported.Written {
					fmt.Fprintf(out, "  %s %s: %d rows (%s)\n", w.Sink, w.Table, w.Rows, w.Duration.Round(time.Millisecond))
				}
				for _, line := range usecase.Summarize(result).Lines() {
					fmt.Fprintln(out, line)
				}
				printFailures(out, result.Report.Failures)
				return err
			})
		},
	}
}

func fetchCmd(opts *rootOptions) *cobra.Command {
	var seasons []string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download season match summaries into the games directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				svc, err := a.NewFetchService()
				if err != nil {
					return err
				}
				input := usecase.FetchInput{SeasonIDs: a.Config.SportradarSeasonIDs}
				if len(seasons) > 0 {
					input.SeasonIDs = seasons
				}

				result, err := svc.FetchSeasons(ctx, input)
				out := cmd.OutOrStdout()
				for _, s := range result.Seasons {
					fmt.Fprintf(out, "%s: scheduled=%d downloaded=%d skipped=%d failed=%d", s.SeasonID, s.Scheduled, s.Downloaded, s.Skipped, s.Failed)
					if s.Message != "" {
						fmt.Fprintf(out, " (%s)", s.Message)
					}
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "total: scheduled=%d downloaded=%d skipped=%d failed=%d\n",
					result.Scheduled, result.Downloaded, result.Skipped, result.Failed)
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&seasons, "season", nil, "Season ids to fetch (default $SPORTRADAR_SEASON_IDS)")
	return cmd
}

func summaryCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Describe the tables the games directory would produce",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				result, err := a.Corpus.ProcessSource(ctx, a.Games)
				if err != nil {
					return err
				}
				return writeSummary(cmd.OutOrStdout(), usecase.Summarize(result), asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func runsCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent build runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				history, err := a.RunHistory()
				if err != nil {
					return err
				}
				runs, err := history.ListRecentRuns(ctx, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "no runs recorded")
					return nil
				}
				for _, r := range runs {
					fmt.Fprintf(out, "%s %s source=%s documents=%d events=%d failures=%d\n",
						r.ID,
						r.Report.StartedAt.UTC().Format(time.RFC3339),
						r.Source,
						r.Report.DocumentsSeen,
						r.Report.EventsExtracted,
						len(r.Report.Failures),
					)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list")
	return cmd
}

func writeSummary(w io.Writer, s usecase.Summary, asJSON bool) error {
	if asJSON {
		raw, err := sonic.ConfigStd.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	for _, line := range s.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func printFailures(w io.Writer, failures []corpus.Failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, "failed documents: %d\n", len(failures))
	for _, f := range failures {
		fmt.Fprintf(w, "  %s [%s] %s\n", f.DocumentID, f.Kind, f.Reason)
	}
}
