// Package cli defines the zoomgrab command surface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/zoomgrab/internal/batch"
	"github.com/anatolykoptev/zoomgrab/internal/config"
	"github.com/anatolykoptev/zoomgrab/internal/downloader"
	"github.com/anatolykoptev/zoomgrab/internal/history"
	"github.com/anatolykoptev/zoomgrab/internal/metrics"
	"github.com/anatolykoptev/zoomgrab/internal/output"
	"github.com/anatolykoptev/zoomgrab/internal/recording"
	"github.com/anatolykoptev/zoomgrab/internal/version"
)

// Execute runs the root command with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	var (
		csvPath    string
		outputDir  string
		verbose    bool
		headless   bool
		skipDone   bool
		stats      bool
		jobTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "zoomgrab <base_filename> <share_url> <passcode> [output_dir]",
		Short: "Download Zoom cloud recordings from passcode-protected share links",
		Long: "zoomgrab drives a headless Chrome through the Zoom share-link flow,\n" +
			"downloads the screen-share and face-camera tracks, and saves the\n" +
			"screen-sharing timeline as JSON.\n\n" +
			"Batch mode reads a CSV manifest with columns base_filename,url,passcode.",
		Example: `  zoomgrab meeting_01 "https://zoom.us/rec/share/xxx" "password123"
  zoomgrab --csv recordings.csv ./downloads`,
		Args:          cobra.RangeArgs(0, 4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputDir = outputDir
			}
			if cmd.Flags().Changed("headless") {
				cfg.Headless = headless
			}

			out := output.NewFormatter(os.Stdout)

			if csvPath != "" {
				if len(args) > 1 {
					return errors.New("batch mode takes at most one argument: [output_dir]")
				}
				if len(args) == 1 {
					cfg.OutputDir = args[0]
				}
				return runBatch(cmd.Context(), cfg, out, csvPath, skipDone, stats, jobTimeout)
			}

			if len(args) < 3 {
				return errors.New("usage: zoomgrab <base_filename> <share_url> <passcode> [output_dir], or --csv <file>")
			}
			if len(args) == 4 {
				cfg.OutputDir = args[3]
			}
			job := recording.Job{
				BaseFilename: args[0],
				ShareURL:     args[1],
				Passcode:     args[2],
			}
			return runSingle(cmd.Context(), cfg, out, job, stats, jobTimeout)
		},
	}

	cmd.Version = version.Version
	cmd.SetVersionTemplate(version.Full() + "\n")

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV manifest for batch mode (base_filename,url,passcode)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "./downloads", "Output directory")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	cmd.Flags().BoolVar(&headless, "headless", true, "Run Chrome headless")
	cmd.Flags().BoolVar(&skipDone, "skip-done", false, "Batch: skip jobs already downloaded ok")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print run counters on exit")
	cmd.Flags().DurationVar(&jobTimeout, "timeout", 0, "Per-job time budget (0 = none)")

	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openHistory opens the history DB, degrading to nil when unavailable.
func openHistory(path string) *history.DB {
	db, err := history.Open(path)
	if err != nil {
		slog.Warn("history unavailable", slog.Any("error", err))
		return nil
	}
	return db
}

func runSingle(ctx context.Context, cfg *config.Config, out *output.Formatter, job recording.Job, stats bool, jobTimeout time.Duration) error {
	dl, err := downloader.New(cfg, out)
	if err != nil {
		return err
	}
	db := openHistory(cfg.HistoryPath)
	if db != nil {
		defer db.Close()
	}

	runCtx := ctx
	if jobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, jobTimeout)
		defer cancel()
	}

	files, runErr := dl.Run(runCtx, job)
	if db != nil {
		e := history.Entry{
			BaseFilename: job.BaseFilename,
			URL:          job.ShareURL,
			Status:       history.StatusOK,
			Files:        files,
		}
		if runErr != nil {
			e.Status = history.StatusFailed
			e.Error = runErr.Error()
		}
		if err := db.Record(ctx, e); err != nil {
			slog.Warn("history record failed", slog.Any("error", err))
		}
	}
	printStats(stats)
	return runErr
}

func runBatch(ctx context.Context, cfg *config.Config, out *output.Formatter, csvPath string, skipDone, stats bool, jobTimeout time.Duration) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	jobs, rowErrs, err := batch.LoadManifest(f)
	if err != nil {
		return err
	}
	for _, re := range rowErrs {
		out.Warn(re.Error())
	}
	out.Note(fmt.Sprintf("Loaded %d recordings from %s", len(jobs), csvPath))
	if len(jobs) == 0 {
		return errors.New("manifest has no usable rows")
	}

	dl, err := downloader.New(cfg, out)
	if err != nil {
		return err
	}
	db := openHistory(cfg.HistoryPath)
	if db != nil {
		defer db.Close()
	}

	runner := &batch.Runner{
		Download: func(ctx context.Context, job recording.Job) ([]string, error) {
			if jobTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, jobTimeout)
				defer cancel()
			}
			return dl.Run(ctx, job)
		},
		Delay:    cfg.BatchDelay,
		SkipDone: skipDone,
		History:  db,
		Out:      out,
	}

	summary, err := runner.Run(ctx, jobs)
	printStats(stats)
	if err != nil {
		return err
	}
	if len(summary.Failed) > 0 && len(summary.Failed) == summary.Total-summary.Skipped {
		return errors.New("all jobs failed")
	}
	return nil
}

func printStats(enabled bool) {
	if enabled {
		fmt.Fprint(os.Stderr, metrics.Format())
	}
}
