package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tules/tules/cli"
	"github.com/tules/tules/pkg/store"
	"github.com/tules/tules/tui/theme"
)

// NewListCmd creates the `list` command.
func NewListCmd() *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List background jobs",
		Long: `Lists running jobs, with status re-derived from a process liveness probe
on every call. Pass --all to include completed, failed, and killed jobs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, _, err := buildSupervisor(cmd)
			if err != nil {
				return err
			}

			records, err := sup.PollAll(showAll)
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				return json.NewEncoder(os.Stdout).Encode(records)
			}

			if len(records) == 0 {
				if showAll {
					fmt.Println("No jobs recorded.")
				} else {
					fmt.Println("No running jobs. Use --all to include finished ones.")
				}
				return nil
			}

			printJobTable(records)
			return nil
		},
	}

	addProviderFlag(cmd)
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "Include finished jobs")
	return cmd
}

func printJobTable(records []*store.JobRecord) {
	header := fmt.Sprintf("%-8s  %-9s  %-8s  %-12s  %s",
		"ID", "STATUS", "PROVIDER", "STARTED", "PROMPT")
	fmt.Println(theme.HeaderStyle.Render(header))

	// Fixed columns take 45 cells; the prompt gets the rest.
	promptWidth := terminalWidth() - 45
	if promptWidth < 20 {
		promptWidth = 20
	}

	for _, rec := range records {
		status := statusStyle(rec.Status).Render(fmt.Sprintf("%-9s", rec.Status))
		prompt := rec.Prompt
		if len(prompt) > promptWidth {
			prompt = prompt[:promptWidth-1] + "…"
		}
		fmt.Printf("%-8s  %s  %-8s  %-12s  %s\n",
			rec.ShortID(), status, rec.Provider,
			relativeTime(rec.StartedAt), prompt)
	}
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 120
}

func statusStyle(status store.Status) lipgloss.Style {
	switch status {
	case store.StatusRunning:
		return theme.RunningStyle
	case store.StatusFailed, store.StatusKilled:
		return theme.ErrorStyle
	default:
		return theme.MutedStyle
	}
}

// relativeTime renders a short "how long ago" label for the table.
func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}
