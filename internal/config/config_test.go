package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	for _, k := range []string{
		"ZOOMGRAB_OUTPUT_DIR", "ZOOMGRAB_CHROME_PATH",
		"ZOOMGRAB_HISTORY_PATH", "ZOOMGRAB_HEADLESS", "ZOOMGRAB_LOCALE",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "./downloads", cfg.OutputDir)
	require.True(t, cfg.Headless)
	require.Equal(t, "ja-JP", cfg.Locale)
	require.Equal(t, 3*time.Second, cfg.BatchDelay)
	require.Equal(t, int64(100*1024), cfg.MinFileBytes)
	require.NotEmpty(t, cfg.UserAgent)
	require.Contains(t, cfg.HistoryPath, ".zoomgrab")
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)

	confDir := filepath.Join(dir, ".config", "zoomgrab")
	require.NoError(t, os.MkdirAll(confDir, 0o755))
	content := `
output_dir = "/tmp/recordings"
headless = false
locale = "en-US"
batch_delay = "10s"
min_file_bytes = 4096
`
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "config.toml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/recordings", cfg.OutputDir)
	require.False(t, cfg.Headless)
	require.Equal(t, "en-US", cfg.Locale)
	require.Equal(t, 10*time.Second, cfg.BatchDelay)
	require.Equal(t, int64(4096), cfg.MinFileBytes)
}

func TestLoadBadDuration(t *testing.T) {
	dir := isolate(t)

	confDir := filepath.Join(dir, ".config", "zoomgrab")
	require.NoError(t, os.MkdirAll(confDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "config.toml"),
		[]byte(`media_wait = "not-a-duration"`), 0o644))

	_, err := Load()
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ZOOMGRAB_OUTPUT_DIR", "/data/zoom")
	t.Setenv("ZOOMGRAB_HEADLESS", "false")
	t.Setenv("ZOOMGRAB_LOCALE", "en-GB")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/data/zoom", cfg.OutputDir)
	require.False(t, cfg.Headless)
	require.Equal(t, "en-GB", cfg.Locale)
}
