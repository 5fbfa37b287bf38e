package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tules/tules/pkg/paths"
	"github.com/tules/tules/pkg/provider"
	"github.com/tules/tules/pkg/store"
	"github.com/tules/tules/pkg/supervisor"
	"github.com/tules/tules/tui/theme"
)

// NewDoctorCmd creates the `doctor` command.
func NewDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose provider and sandbox availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := theme.RunningStyle.Render("✓")
			bad := theme.ErrorStyle.Render("✗")

			fmt.Println(theme.TitleStyle.Render("Providers"))
			for _, p := range provider.All() {
				if p.Available() {
					fmt.Printf("  %s %-7s %s\n", ok, p.Name(), p.BinaryPath())
				} else {
					fmt.Printf("  %s %-7s not found\n", bad, p.Name())
					continue
				}
				fmt.Printf("    config dir: %s%s\n", p.ConfigDir(), existsMark(p.ConfigDir()))
				if file := p.ConfigFile(); file != "" {
					fmt.Printf("    config file: %s%s\n", file, existsMark(file))
				}
				fmt.Printf("    jobs store: %s\n", paths.AgentsStoreFile(p.AgentsDir()))
			}

			fmt.Println(theme.TitleStyle.Render("\nSandbox"))
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			probe := supervisor.New(provider.Get("claude"), store.New(""))
			if probe.DockerAvailable(ctx) {
				fmt.Printf("  %s docker is responding\n", ok)
			} else {
				fmt.Printf("  %s docker is not installed or not running\n", bad)
				fmt.Println("    jobs can still run with --no-sandbox")
			}

			fmt.Println(theme.TitleStyle.Render("\nConfig"))
			fmt.Printf("  file: %s%s\n", paths.ConfigFile(), existsMark(paths.ConfigFile()))
			return nil
		},
	}
}

func existsMark(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err == nil {
		return ""
	}
	return theme.MutedStyle.Render(" (missing)")
}
