// Package timeline reconstructs the screen-sharing timeline of a Zoom
// cloud recording from the player page. The player renders one marker span
// per sharing start/stop on the seek bar; the event and its offset live in
// the span's aria-label.
package timeline

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Event is a single sharing start/stop marker.
type Event struct {
	Action  string `json:"action"`  // "Sharing Started" or "Sharing Stopped"
	Time    string `json:"time"`    // HH:MM:SS offset into the recording
	Seconds int    `json:"seconds"` // same offset in seconds
}

const markerSelector = "span.vjs-share-marker-button"

// aria-label format: "Sharing Started,0 hours 4 minutes 13 seconds"
var labelRe = regexp.MustCompile(`(Sharing (?:Started|Stopped)),(\d+) hours (\d+) minutes (\d+) seconds`)

// ParseLabel parses one marker aria-label. ok is false for labels that are
// not sharing markers.
func ParseLabel(label string) (Event, bool) {
	m := labelRe.FindStringSubmatch(label)
	if m == nil {
		return Event{}, false
	}
	h, _ := strconv.Atoi(m[2])
	min, _ := strconv.Atoi(m[3])
	s, _ := strconv.Atoi(m[4])
	return Event{
		Action:  m[1],
		Time:    fmt.Sprintf("%02d:%02d:%02d", h, min, s),
		Seconds: h*3600 + min*60 + s,
	}, true
}

// FromHTML extracts sharing events from a snapshot of the player page,
// in document order. A page without markers yields an empty slice.
func FromHTML(html string) ([]Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("timeline: parse html: %w", err)
	}

	var events []Event
	doc.Find(markerSelector).Each(func(_ int, sel *goquery.Selection) {
		label, ok := sel.Attr("aria-label")
		if !ok {
			return
		}
		if ev, ok := ParseLabel(label); ok {
			events = append(events, ev)
		}
	})
	return events, nil
}

// WriteJSON saves events as an indented JSON array.
func WriteJSON(path string, events []Event) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("timeline: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("timeline: write %s: %w", path, err)
	}
	return nil
}
