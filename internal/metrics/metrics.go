// Package metrics tracks operational counters across a run.
package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

var counters struct {
	PagesLoaded        atomic.Int64
	PasscodesSubmitted atomic.Int64
	MediaRequests      atomic.Int64
	TimelineEvents     atomic.Int64
	DownloadsOK        atomic.Int64
	DownloadsFailed    atomic.Int64
	BytesDownloaded    atomic.Int64
	JobsFailed         atomic.Int64
}

func IncrPagesLoaded()        { counters.PagesLoaded.Add(1) }
func IncrPasscodesSubmitted() { counters.PasscodesSubmitted.Add(1) }
func IncrMediaRequests()      { counters.MediaRequests.Add(1) }
func IncrDownloadsOK()        { counters.DownloadsOK.Add(1) }
func IncrDownloadsFailed()    { counters.DownloadsFailed.Add(1) }
func IncrJobsFailed()         { counters.JobsFailed.Add(1) }

func AddTimelineEvents(n int)    { counters.TimelineEvents.Add(int64(n)) }
func AddBytesDownloaded(n int64) { counters.BytesDownloaded.Add(n) }

// Get returns a snapshot of all counters.
func Get() map[string]int64 {
	return map[string]int64{
		"pages_loaded":        counters.PagesLoaded.Load(),
		"passcodes_submitted": counters.PasscodesSubmitted.Load(),
		"media_requests":      counters.MediaRequests.Load(),
		"timeline_events":     counters.TimelineEvents.Load(),
		"downloads_ok":        counters.DownloadsOK.Load(),
		"downloads_failed":    counters.DownloadsFailed.Load(),
		"bytes_downloaded":    counters.BytesDownloaded.Load(),
		"jobs_failed":         counters.JobsFailed.Load(),
	}
}

// Format returns counters as a simple text block, one per line.
func Format() string {
	m := Get()
	keys := []string{
		"pages_loaded", "passcodes_submitted", "media_requests",
		"timeline_events", "downloads_ok", "downloads_failed",
		"bytes_downloaded", "jobs_failed",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
