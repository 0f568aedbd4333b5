package recording

import "testing"

func TestClassifyMediaURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		kind MediaKind
		res  string
		ok   bool
	}{
		{
			name: "screen share track",
			url:  "https://ssrweb.zoom.us/replay02/2025/10/22/ABC/GMT20251022_as_1920x1080.mp4?type=rec",
			kind: KindScreen,
			res:  "1920x1080",
			ok:   true,
		},
		{
			name: "face camera track",
			url:  "https://ssrweb.zoom.us/replay02/2025/10/22/ABC/GMT20251022_avo_1280x720.mp4?type=rec",
			kind: KindFace,
			res:  "1280x720",
			ok:   true,
		},
		{
			name: "marker without resolution",
			url:  "https://ssrweb.zoom.us/replay02/GMT20251022_avo_.mp4",
			kind: KindFace,
			res:  "unknown",
			ok:   true,
		},
		{
			name: "audio only track ignored",
			url:  "https://ssrweb.zoom.us/replay02/GMT20251022_audio_only.mp4",
			ok:   false,
		},
		{
			name: "non media url ignored",
			url:  "https://us06web.zoom.us/rec/share/xyz",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, res, ok := ClassifyMediaURL(tt.url)
			if ok != tt.ok {
				t.Fatalf("ClassifyMediaURL() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if kind != tt.kind || res != tt.res {
				t.Errorf("ClassifyMediaURL() = (%s, %s), want (%s, %s)", kind, res, tt.kind, tt.res)
			}
		})
	}
}

func TestArtifactName(t *testing.T) {
	got := ArtifactName("meeting_2025-10-22", KindScreen, "1920x1080")
	want := "meeting_2025-10-22_screen_1920x1080.mp4"
	if got != want {
		t.Errorf("ArtifactName() = %q, want %q", got, want)
	}

	got = ArtifactName("m1", KindFace, "unknown")
	if got != "m1_face_unknown.mp4" {
		t.Errorf("ArtifactName() = %q", got)
	}

	if TimelineName("m1") != "m1_timeline.json" {
		t.Errorf("TimelineName() = %q", TimelineName("m1"))
	}
}

func TestJobValidate(t *testing.T) {
	tests := []struct {
		name    string
		job     Job
		wantErr bool
	}{
		{"valid", Job{"meeting_01", "https://zoom.us/rec/share/xxx", "pw"}, false},
		{"empty passcode ok", Job{"meeting_01", "https://zoom.us/rec/share/xxx", ""}, false},
		{"missing base", Job{"", "https://zoom.us/rec/share/xxx", "pw"}, true},
		{"path separator in base", Job{"../evil", "https://zoom.us/rec/share/xxx", "pw"}, true},
		{"not a url", Job{"meeting_01", "zoom.us/rec", "pw"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
