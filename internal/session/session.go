// Package session drives a headless Chrome through the Zoom share-link
// flow: load the page, clear the passcode prompt, and capture what the
// player needs — the media request URLs with their headers, the session
// cookies, and an HTML snapshot for timeline extraction.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/anatolykoptev/zoomgrab/internal/metrics"
	"github.com/anatolykoptev/zoomgrab/internal/output"
)

// Options controls the browser session.
type Options struct {
	Headless     bool
	UserAgent    string
	Locale       string
	ChromePath   string // empty = let chromedp find the binary
	NavTimeout   time.Duration
	PasscodeWait time.Duration // how long to wait for the passcode prompt
	MediaWait    time.Duration // how long to wait for media requests
}

// MediaRequest is one captured request to the media host.
type MediaRequest struct {
	URL     string
	Headers map[string]string
}

// Capture is everything harvested from one browser session.
type Capture struct {
	Media        []MediaRequest
	CookieHeader string // Cookie header value for replaying media requests
	HTML         string // player page snapshot
}

const mediaHost = "ssrweb.zoom.us"

// Run executes the full share-link flow and returns the capture.
// An absent passcode prompt is not an error; absent media requests are.
func Run(ctx context.Context, shareURL, passcode string, opts Options, progress *output.Formatter) (*Capture, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", opts.Locale),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(1280, 720),
	)
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var mu sync.Mutex
	var media []MediaRequest
	seen := make(map[string]bool)
	chromedp.ListenTarget(taskCtx, func(ev any) {
		req, ok := ev.(*network.EventRequestWillBeSent)
		if !ok {
			return
		}
		u := req.Request.URL
		if !strings.Contains(u, mediaHost) || !strings.Contains(u, ".mp4") {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if seen[u] {
			return
		}
		seen[u] = true
		media = append(media, MediaRequest{URL: u, Headers: flattenHeaders(req.Request.Headers)})
		metrics.IncrMediaRequests()
		slog.Debug("media request captured", slog.String("url", u))
	})

	progress.Step(1, 4, "Loading page...")
	navCtx, cancelNav := context.WithTimeout(taskCtx, opts.NavTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx,
		network.Enable(),
		hideWebdriver(),
		chromedp.Navigate(shareURL),
	); err != nil {
		return nil, fmt.Errorf("load share page: %w", err)
	}
	metrics.IncrPagesLoaded()

	progress.Step(2, 4, "Entering passcode...")
	if err := submitPasscode(taskCtx, passcode, opts.PasscodeWait); err != nil {
		// Public links have no prompt; the media wait below decides
		// whether access actually worked.
		progress.Warn("passcode might not be required: " + err.Error())
	}

	progress.Step(3, 4, "Waiting for video requests...")
	if err := waitForMedia(taskCtx, opts.MediaWait, func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(media)
	}); err != nil {
		slog.Warn("no media requests before deadline", slog.String("url", shareURL))
	}

	progress.Step(4, 4, "Extracting sharing timeline...")
	var html string
	var cookies []*network.Cookie
	if err := chromedp.Run(taskCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = storage.GetCookies().Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("snapshot page: %w", err)
	}

	mu.Lock()
	captured := make([]MediaRequest, len(media))
	copy(captured, media)
	mu.Unlock()

	return &Capture{
		Media:        captured,
		CookieHeader: cookieHeader(cookies, shareURL),
		HTML:         html,
	}, nil
}

// submitPasscode waits for the password prompt, fills it, and clicks the
// submit button. Returns an error if the prompt never appears.
func submitPasscode(ctx context.Context, passcode string, wait time.Duration) error {
	wctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if err := chromedp.Run(wctx, chromedp.WaitVisible(`input[type="password"]`, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("password field: %w", err)
	}

	if err := chromedp.Run(ctx,
		chromedp.SendKeys(`input[type="password"]`, passcode, chromedp.ByQuery),
		chromedp.Evaluate(clickSubmitJS, nil),
	); err != nil {
		return fmt.Errorf("submit passcode: %w", err)
	}
	metrics.IncrPasscodesSubmitted()
	return nil
}

// waitForMedia polls count once per second until it is positive or the
// deadline passes.
func waitForMedia(ctx context.Context, wait time.Duration, count func() int) error {
	deadline := time.Now().Add(wait)
	for {
		if count() > 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no media requests after %s", wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// flattenHeaders converts CDP request headers to a plain string map with
// lowercased keys.
func flattenHeaders(h network.Headers) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = fmt.Sprint(v)
	}
	return out
}
