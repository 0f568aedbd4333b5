package history

import (
	"context"
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), ".zoomgrab", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndList(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	err := db.Record(ctx, Entry{
		BaseFilename: "meeting_01",
		URL:          "https://zoom.us/rec/share/abc",
		Status:       StatusOK,
		Files:        []string{"meeting_01_screen_1920x1080.mp4", "meeting_01_timeline.json"},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	err = db.Record(ctx, Entry{
		BaseFilename: "meeting_02",
		URL:          "https://zoom.us/rec/share/def",
		Status:       StatusFailed,
		Error:        "no video requests captured",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := db.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// newest first
	if entries[0].BaseFilename != "meeting_02" {
		t.Errorf("entries[0] = %q", entries[0].BaseFilename)
	}
	if len(entries[1].Files) != 2 {
		t.Errorf("expected 2 files, got %v", entries[1].Files)
	}

	failed, err := db.List(ctx, StatusFailed, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].Error == "" {
		t.Errorf("failed list = %+v", failed)
	}
}

func TestWasDownloaded(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	ok, err := db.WasDownloaded(ctx, "meeting_01", "https://zoom.us/rec/share/abc")
	if err != nil {
		t.Fatalf("WasDownloaded: %v", err)
	}
	if ok {
		t.Error("expected false before any record")
	}

	if err := db.Record(ctx, Entry{
		BaseFilename: "meeting_01",
		URL:          "https://zoom.us/rec/share/abc",
		Status:       StatusFailed,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	ok, _ = db.WasDownloaded(ctx, "meeting_01", "https://zoom.us/rec/share/abc")
	if ok {
		t.Error("failed outcome must not count as downloaded")
	}

	if err := db.Record(ctx, Entry{
		BaseFilename: "meeting_01",
		URL:          "https://zoom.us/rec/share/abc",
		Status:       StatusOK,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	ok, _ = db.WasDownloaded(ctx, "meeting_01", "https://zoom.us/rec/share/abc")
	if !ok {
		t.Error("expected true after ok record")
	}
}

func TestRecordValidation(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	if err := db.Record(ctx, Entry{URL: "https://zoom.us/x", Status: StatusOK}); err == nil {
		t.Error("expected error for missing base_filename")
	}
	if err := db.Record(ctx, Entry{BaseFilename: "m", URL: "https://zoom.us/x", Status: "partial"}); err == nil {
		t.Error("expected error for invalid status")
	}
}
