package cli

import (
	"errors"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/zoomgrab/internal/config"
	"github.com/anatolykoptev/zoomgrab/internal/history"
	"github.com/anatolykoptev/zoomgrab/internal/output"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)
			ok := true

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if path, err := findChrome(cfg.ChromePath); err != nil {
				f.Check("Chrome", false, "not found. Install Chrome or Chromium, or set chrome_path in config")
				ok = false
			} else {
				f.Check("Chrome", true, path)
			}

			if err := checkWritable(cfg.OutputDir); err != nil {
				f.Check("Output directory", false, cfg.OutputDir+": "+err.Error())
				ok = false
			} else {
				f.Check("Output directory", true, cfg.OutputDir)
			}

			if db, err := history.Open(cfg.HistoryPath); err != nil {
				f.Check("History DB", false, err.Error())
				ok = false
			} else {
				db.Close()
				f.Check("History DB", true, cfg.HistoryPath)
			}

			if !ok {
				return errors.New("some prerequisites are missing")
			}
			f.Note("All prerequisites met.")
			return nil
		},
	}
}

// findChrome locates the Chrome binary the session will launch.
func findChrome(override string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", err
		}
		return override, nil
	}
	candidates := []string{
		"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome",
	}
	if runtime.GOOS == "darwin" {
		mac := "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
		if _, err := os.Stat(mac); err == nil {
			return mac, nil
		}
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no chrome binary on PATH")
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".zoomgrab-doctor-*")
	if err != nil {
		return err
	}
	tmp.Close()
	return os.Remove(tmp.Name())
}
