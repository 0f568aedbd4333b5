package downloader

import (
	"testing"

	"github.com/anatolykoptev/zoomgrab/internal/session"
)

func TestPlan(t *testing.T) {
	media := []session.MediaRequest{
		{URL: "https://ssrweb.zoom.us/replay/GMT20251022_as_1920x1080.mp4?x=1"},
		{URL: "https://ssrweb.zoom.us/replay/GMT20251022_avo_1280x720.mp4?x=1"},
		{URL: "https://ssrweb.zoom.us/replay/GMT20251022_audio_only.mp4"},
	}
	targets := plan("meeting_01", media)
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].Filename != "meeting_01_screen_1920x1080.mp4" {
		t.Errorf("targets[0] = %q", targets[0].Filename)
	}
	if targets[1].Filename != "meeting_01_face_1280x720.mp4" {
		t.Errorf("targets[1] = %q", targets[1].Filename)
	}
}

func TestPlanEmpty(t *testing.T) {
	if got := plan("m1", nil); len(got) != 0 {
		t.Errorf("expected no targets, got %d", len(got))
	}
}

func TestReplayHeaders(t *testing.T) {
	captured := map[string]string{
		"accept":     "video/mp4",
		"referer":    "https://us02web.zoom.us/rec/play/abc",
		"user-agent": "Captured-UA",
	}
	h := replayHeaders(captured, "_zm_ssid=abc", "Fallback-UA", "ja-JP")

	if h["accept"] != "video/mp4" {
		t.Errorf("accept = %q", h["accept"])
	}
	if h["referer"] != "https://us02web.zoom.us/rec/play/abc" {
		t.Errorf("referer = %q", h["referer"])
	}
	if h["user-agent"] != "Captured-UA" {
		t.Errorf("user-agent = %q", h["user-agent"])
	}
	if h["cookie"] != "_zm_ssid=abc" {
		t.Errorf("cookie = %q", h["cookie"])
	}
	// accept-language falls back when not captured
	if h["accept-language"] != "ja-JP" {
		t.Errorf("accept-language = %q", h["accept-language"])
	}
}

func TestReplayHeadersLocaleFallback(t *testing.T) {
	h := replayHeaders(nil, "", "Fallback-UA", "en-GB")
	if h["accept-language"] != "en-GB" {
		t.Errorf("accept-language = %q, want configured locale", h["accept-language"])
	}

	captured := map[string]string{"accept-language": "ja-JP,ja;q=0.9"}
	h = replayHeaders(captured, "", "Fallback-UA", "en-GB")
	if h["accept-language"] != "ja-JP,ja;q=0.9" {
		t.Errorf("captured accept-language must win, got %q", h["accept-language"])
	}
}

func TestReplayHeadersNoCookies(t *testing.T) {
	h := replayHeaders(nil, "", "Fallback-UA", "ja-JP")
	if _, ok := h["cookie"]; ok {
		t.Error("cookie header should be absent")
	}
	if h["user-agent"] != "Fallback-UA" {
		t.Errorf("user-agent = %q", h["user-agent"])
	}
}
