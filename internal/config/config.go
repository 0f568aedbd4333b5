// Package config loads tool configuration: defaults, then the optional
// config file, then ZOOMGRAB_* environment overrides. Command-line flags
// are applied on top by the cli package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/anatolykoptev/zoomgrab/internal/session"
)

type Config struct {
	OutputDir    string
	Headless     bool
	Locale       string
	UserAgent    string
	ChromePath   string
	NavTimeout   time.Duration
	PasscodeWait time.Duration
	MediaWait    time.Duration
	FetchTimeout time.Duration // per media file
	BatchDelay   time.Duration // pause between batch jobs
	MinFileBytes int64         // smaller downloads are treated as failures
	HistoryPath  string
}

type fileConfig struct {
	OutputDir    string `toml:"output_dir"`
	Headless     *bool  `toml:"headless"`
	Locale       string `toml:"locale"`
	UserAgent    string `toml:"user_agent"`
	ChromePath   string `toml:"chrome_path"`
	NavTimeout   string `toml:"nav_timeout"`
	PasscodeWait string `toml:"passcode_wait"`
	MediaWait    string `toml:"media_wait"`
	FetchTimeout string `toml:"fetch_timeout"`
	BatchDelay   string `toml:"batch_delay"`
	MinFileBytes int64  `toml:"min_file_bytes"`
	HistoryPath  string `toml:"history_path"`
}

func Load() (*Config, error) {
	cfg := &Config{
		OutputDir:    "./downloads",
		Headless:     true,
		Locale:       "ja-JP",
		UserAgent:    session.DefaultUserAgent,
		NavTimeout:   60 * time.Second,
		PasscodeWait: 10 * time.Second,
		MediaWait:    30 * time.Second,
		FetchTimeout: 15 * time.Minute,
		BatchDelay:   3 * time.Second,
		MinFileBytes: 100 * 1024,
		HistoryPath:  defaultHistoryPath(),
	}

	if path := configFilePath(); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return err
	}
	if fc.OutputDir != "" {
		cfg.OutputDir = expandTilde(fc.OutputDir)
	}
	if fc.Headless != nil {
		cfg.Headless = *fc.Headless
	}
	if fc.Locale != "" {
		cfg.Locale = fc.Locale
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.ChromePath != "" {
		cfg.ChromePath = expandTilde(fc.ChromePath)
	}
	if fc.MinFileBytes > 0 {
		cfg.MinFileBytes = fc.MinFileBytes
	}
	if fc.HistoryPath != "" {
		cfg.HistoryPath = expandTilde(fc.HistoryPath)
	}
	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{fc.NavTimeout, &cfg.NavTimeout},
		{fc.PasscodeWait, &cfg.PasscodeWait},
		{fc.MediaWait, &cfg.MediaWait},
		{fc.FetchTimeout, &cfg.FetchTimeout},
		{fc.BatchDelay, &cfg.BatchDelay},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("bad duration %q: %w", d.raw, err)
		}
		*d.dst = v
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ZOOMGRAB_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = expandTilde(v)
	}
	if v := os.Getenv("ZOOMGRAB_CHROME_PATH"); v != "" {
		cfg.ChromePath = expandTilde(v)
	}
	if v := os.Getenv("ZOOMGRAB_HISTORY_PATH"); v != "" {
		cfg.HistoryPath = expandTilde(v)
	}
	if v := os.Getenv("ZOOMGRAB_HEADLESS"); v != "" {
		cfg.Headless = v != "false" && v != "0"
	}
	if v := os.Getenv("ZOOMGRAB_LOCALE"); v != "" {
		cfg.Locale = v
	}
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "zoomgrab")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "zoomgrab")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func defaultHistoryPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".zoomgrab", "history.db")
	}
	return filepath.Join(".", ".zoomgrab", "history.db")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
