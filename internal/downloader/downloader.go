// Package downloader runs one recording job end to end: browser session,
// timeline extraction, then media downloads.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/anatolykoptev/zoomgrab/internal/config"
	"github.com/anatolykoptev/zoomgrab/internal/fetch"
	"github.com/anatolykoptev/zoomgrab/internal/metrics"
	"github.com/anatolykoptev/zoomgrab/internal/output"
	"github.com/anatolykoptev/zoomgrab/internal/recording"
	"github.com/anatolykoptev/zoomgrab/internal/session"
	"github.com/anatolykoptev/zoomgrab/internal/timeline"
)

// ErrNoMedia means the player never requested any downloadable track —
// typically a wrong passcode or a recording without video.
var ErrNoMedia = errors.New("no video requests captured")

type Downloader struct {
	cfg     *config.Config
	fetcher *fetch.Client
	out     *output.Formatter
}

func New(cfg *config.Config, out *output.Formatter) (*Downloader, error) {
	fc, err := fetch.NewClient(cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}
	return &Downloader{cfg: cfg, fetcher: fc, out: out}, nil
}

// Run downloads one recording and returns the paths of the files it saved
// (videos plus the timeline JSON, if any).
func (d *Downloader) Run(ctx context.Context, job recording.Job) ([]string, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(d.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	d.out.JobHeader(job.BaseFilename, job.ShareURL)

	capture, err := session.Run(ctx, job.ShareURL, job.Passcode, session.Options{
		Headless:     d.cfg.Headless,
		UserAgent:    d.cfg.UserAgent,
		Locale:       d.cfg.Locale,
		ChromePath:   d.cfg.ChromePath,
		NavTimeout:   d.cfg.NavTimeout,
		PasscodeWait: d.cfg.PasscodeWait,
		MediaWait:    d.cfg.MediaWait,
	}, d.out)
	if err != nil {
		return nil, err
	}

	var saved []string
	if path := d.saveTimeline(job, capture.HTML); path != "" {
		saved = append(saved, path)
	}

	targets := plan(job.BaseFilename, capture.Media)
	d.out.Note(fmt.Sprintf("Found %d video request(s)", len(targets)))
	if len(targets) == 0 {
		return saved, ErrNoMedia
	}

	var videos int
	for _, tg := range targets {
		dest := filepath.Join(d.cfg.OutputDir, tg.Filename)
		d.out.FileStart(dest)

		headers := replayHeaders(tg.Headers, capture.CookieHeader, d.cfg.UserAgent, d.cfg.Locale)
		n, err := d.fetcher.Download(ctx, tg.URL, headers, dest, d.cfg.MinFileBytes)
		if err != nil {
			metrics.IncrDownloadsFailed()
			d.out.FileFailed(dest, err)
			slog.Error("download failed", slog.String("file", dest), slog.Any("error", err))
			continue
		}
		metrics.IncrDownloadsOK()
		metrics.AddBytesDownloaded(n)
		d.out.FileDone(dest, n)
		saved = append(saved, dest)
		videos++
	}

	if videos == 0 {
		return saved, errors.New("all downloads failed")
	}
	return saved, nil
}

// saveTimeline writes the timeline JSON if the page carried any sharing
// markers. Returns the written path or "".
func (d *Downloader) saveTimeline(job recording.Job, html string) string {
	events, err := timeline.FromHTML(html)
	if err != nil {
		slog.Warn("timeline extraction failed", slog.Any("error", err))
		return ""
	}
	if len(events) == 0 {
		d.out.Note("No sharing timeline found")
		return ""
	}

	path := filepath.Join(d.cfg.OutputDir, recording.TimelineName(job.BaseFilename))
	if err := timeline.WriteJSON(path, events); err != nil {
		slog.Warn("timeline save failed", slog.Any("error", err))
		return ""
	}
	metrics.AddTimelineEvents(len(events))
	d.out.Note(fmt.Sprintf("Saved sharing timeline: %s (%d events)", path, len(events)))
	return path
}

// target is one media URL resolved to its output filename.
type target struct {
	URL      string
	Filename string
	Headers  map[string]string
}

// plan classifies captured media requests into download targets, dropping
// requests that are not screen/face tracks. Capture order is preserved;
// duplicate URLs were already collapsed by the session.
func plan(base string, media []session.MediaRequest) []target {
	var targets []target
	for _, m := range media {
		kind, res, ok := recording.ClassifyMediaURL(m.URL)
		if !ok {
			continue
		}
		targets = append(targets, target{
			URL:      m.URL,
			Filename: recording.ArtifactName(base, kind, res),
			Headers:  m.Headers,
		})
	}
	return targets
}

// replayHeaders builds the header set for a media download from the
// captured browser request, mirroring what the player itself sent.
func replayHeaders(captured map[string]string, cookieHeader, userAgent, locale string) map[string]string {
	pick := func(key, fallback string) string {
		if v, ok := captured[key]; ok && v != "" {
			return v
		}
		return fallback
	}
	h := map[string]string{
		"accept":          pick("accept", "*/*"),
		"accept-language": pick("accept-language", locale),
		"referer":         pick("referer", "https://us06web.zoom.us/"),
		"user-agent":      pick("user-agent", userAgent),
	}
	if cookieHeader != "" {
		h["cookie"] = cookieHeader
	}
	return h
}
