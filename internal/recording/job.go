// Package recording holds the download job model and the naming rules for
// the artifacts one job produces.
package recording

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Job is one recording to download. Built from CLI arguments or a single
// CSV manifest row; immutable for the duration of the download.
type Job struct {
	BaseFilename string
	ShareURL     string
	Passcode     string
}

// Validate checks the fields required to start a download.
// Passcode may be empty — public share links have no prompt.
func (j Job) Validate() error {
	if j.BaseFilename == "" {
		return errors.New("job: base_filename is required")
	}
	if strings.ContainsAny(j.BaseFilename, `/\`) {
		return fmt.Errorf("job: base_filename %q must not contain path separators", j.BaseFilename)
	}
	if !strings.HasPrefix(j.ShareURL, "http://") && !strings.HasPrefix(j.ShareURL, "https://") {
		return fmt.Errorf("job: share URL %q is not an http(s) URL", j.ShareURL)
	}
	return nil
}

// MediaKind distinguishes the two video tracks a Zoom recording exposes.
type MediaKind string

const (
	KindScreen MediaKind = "screen" // shared-screen track (_as_ URLs)
	KindFace   MediaKind = "face"   // face-camera track (_avo_ URLs)
)

var resolutionRe = regexp.MustCompile(`_(?:avo|as)_(\d+x\d+)\.mp4`)

// ClassifyMediaURL maps a captured media URL to its track kind and
// resolution. URLs without the _avo_/_as_ markers are not downloadable
// tracks and return ok=false. Resolution is "unknown" when the URL carries
// the marker but no WxH suffix.
func ClassifyMediaURL(rawURL string) (kind MediaKind, resolution string, ok bool) {
	switch {
	case strings.Contains(rawURL, "_avo_"):
		kind = KindFace
	case strings.Contains(rawURL, "_as_"):
		kind = KindScreen
	default:
		return "", "", false
	}
	resolution = "unknown"
	if m := resolutionRe.FindStringSubmatch(rawURL); m != nil {
		resolution = m[1]
	}
	return kind, resolution, true
}

// ArtifactName returns the video filename for one track:
// {base}_screen_{res}.mp4 or {base}_face_{res}.mp4.
func ArtifactName(base string, kind MediaKind, resolution string) string {
	return fmt.Sprintf("%s_%s_%s.mp4", base, kind, resolution)
}

// TimelineName returns the timeline JSON filename: {base}_timeline.json.
func TimelineName(base string) string {
	return base + "_timeline.json"
}
