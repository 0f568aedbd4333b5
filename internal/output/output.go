// Package output renders user-facing progress. Log lines for operators go
// through slog; everything here is what the person running the tool reads.
package output

import (
	"fmt"
	"io"
	"strings"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// JobHeader prints the banner that opens one download.
func (f *Formatter) JobHeader(base, shareURL string) {
	if len(shareURL) > 50 {
		shareURL = shareURL[:50] + "..."
	}
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(f.w, "\n%s\n", rule)
	fmt.Fprintf(f.w, "Processing: %s\n", base)
	fmt.Fprintf(f.w, "URL: %s\n", shareURL)
	fmt.Fprintf(f.w, "%s\n", rule)
}

// BatchProgress prints the position marker before a batch job.
func (f *Formatter) BatchProgress(i, n int) {
	fmt.Fprintf(f.w, "\n[%d/%d]\n", i, n)
}

// Step prints one numbered stage of a download.
func (f *Formatter) Step(n, total int, msg string) {
	fmt.Fprintf(f.w, "[%d/%d] %s\n", n, total, msg)
}

func (f *Formatter) Note(msg string) {
	fmt.Fprintf(f.w, "  [i] %s\n", msg)
}

func (f *Formatter) Warn(msg string) {
	fmt.Fprintf(f.w, "  [!] %s\n", msg)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "error: %s\n", msg)
}

func (f *Formatter) FileStart(path string) {
	fmt.Fprintf(f.w, "  Downloading: %s\n", path)
}

func (f *Formatter) FileDone(path string, bytes int64) {
	fmt.Fprintf(f.w, "  [✓] Done: %s (%.1f MB)\n", path, float64(bytes)/(1024*1024))
}

func (f *Formatter) FileFailed(path string, err error) {
	fmt.Fprintf(f.w, "  [✗] Failed: %s - %v\n", path, err)
}

// Check prints one doctor prerequisite line.
func (f *Formatter) Check(name string, ok bool, detail string) {
	mark := "✓"
	if !ok {
		mark = "✗"
	}
	fmt.Fprintf(f.w, "  [%s] %s: %s\n", mark, name, detail)
}

// BatchSummary closes a batch run.
func (f *Formatter) BatchSummary(files int, failed []string) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(f.w, "\n%s\n", rule)
	fmt.Fprintf(f.w, "Complete! Downloaded %d files\n", files)
	if len(failed) > 0 {
		fmt.Fprintf(f.w, "Failed jobs: %s\n", strings.Join(failed, ", "))
	}
	fmt.Fprintf(f.w, "%s\n", rule)
}
