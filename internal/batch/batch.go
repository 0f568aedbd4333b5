// Package batch parses the CSV manifest and runs its jobs sequentially.
// A failed job never stops the rest of the batch.
package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/zoomgrab/internal/history"
	"github.com/anatolykoptev/zoomgrab/internal/metrics"
	"github.com/anatolykoptev/zoomgrab/internal/output"
	"github.com/anatolykoptev/zoomgrab/internal/recording"
)

// manifest header columns, in any order.
var requiredColumns = []string{"base_filename", "url", "passcode"}

// RowError is a manifest row that could not become a job.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// LoadManifest parses a CSV manifest with header base_filename,url,passcode.
// Malformed rows are returned as RowErrors alongside the good jobs; only a
// missing or broken header is fatal.
func LoadManifest(r io.Reader) ([]recording.Job, []RowError, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("manifest: read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("manifest: missing column %q", col)
		}
	}

	var jobs []recording.Job
	var rowErrs []RowError
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		job := recording.Job{
			BaseFilename: rec[idx["base_filename"]],
			ShareURL:     rec[idx["url"]],
			Passcode:     rec[idx["passcode"]],
		}
		if err := job.Validate(); err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, rowErrs, nil
}

// DownloadFunc runs one job and returns the files it saved.
type DownloadFunc func(ctx context.Context, job recording.Job) ([]string, error)

// Runner drives jobs through a DownloadFunc one at a time.
type Runner struct {
	Download DownloadFunc
	Delay    time.Duration // pause between jobs; 0 disables pacing
	SkipDone bool          // skip jobs with an ok history entry
	History  *history.DB   // nil disables recording and SkipDone
	Out      *output.Formatter
}

// Summary is the result of one batch run.
type Summary struct {
	Total   int
	Skipped int
	Files   []string
	Failed  []string // base filenames of failed jobs
}

// Run processes jobs sequentially, pacing them with a rate limiter and
// continuing past per-job failures.
func (r *Runner) Run(ctx context.Context, jobs []recording.Job) (Summary, error) {
	summary := Summary{Total: len(jobs)}

	var limiter *rate.Limiter
	if r.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(r.Delay), 1)
	}

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		r.Out.BatchProgress(i+1, len(jobs))

		if r.SkipDone && r.History != nil {
			done, err := r.History.WasDownloaded(ctx, job.BaseFilename, job.ShareURL)
			if err != nil {
				slog.Warn("history lookup failed", slog.Any("error", err))
			} else if done {
				r.Out.Note(fmt.Sprintf("Skipping %s (already downloaded)", job.BaseFilename))
				summary.Skipped++
				continue
			}
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}

		files, err := r.Download(ctx, job)
		summary.Files = append(summary.Files, files...)
		if err != nil {
			metrics.IncrJobsFailed()
			summary.Failed = append(summary.Failed, job.BaseFilename)
			slog.Error("job failed",
				slog.String("base", job.BaseFilename),
				slog.Any("error", err),
			)
			r.record(ctx, job, files, err)
			continue
		}
		r.record(ctx, job, files, nil)
	}

	r.Out.BatchSummary(len(summary.Files), summary.Failed)
	return summary, nil
}

func (r *Runner) record(ctx context.Context, job recording.Job, files []string, runErr error) {
	if r.History == nil {
		return
	}
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
	if err := r.History.Record(ctx, e); err != nil {
		slog.Warn("history record failed", slog.Any("error", err))
	}
}
