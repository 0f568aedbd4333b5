package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/zoomgrab/internal/config"
	"github.com/anatolykoptev/zoomgrab/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past download outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && status != string(history.StatusOK) && status != string(history.StatusFailed) {
				return fmt.Errorf("invalid --status %q (valid: ok, failed)", status)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.List(cmd.Context(), history.Status(status), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(os.Stdout, "No downloads recorded.")
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s  %-6s  %s", e.CreatedAt, e.Status, e.BaseFilename)
				if e.Status == history.StatusOK {
					line += fmt.Sprintf("  (%d files)", len(e.Files))
				} else if e.Error != "" {
					line += "  " + e.Error
				}
				fmt.Fprintln(os.Stdout, line)
			}
			fmt.Fprintf(os.Stdout, "\n%d entries\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: ok or failed")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show")

	return cmd
}
