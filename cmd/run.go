package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tules/tules/pkg/supervisor"
	"github.com/tules/tules/tui/theme"
)

// NewRunCmd creates the `run` command.
func NewRunCmd() *cobra.Command {
	var (
		noSandbox bool
		noBranch  bool
		image     string
	)

	cmd := &cobra.Command{
		Use:   "run <prompt> [prompt...]",
		Short: "Launch one or more background AI jobs",
		Long: `Launches each prompt as a detached background job inside a sandboxed
container. The job keeps running after tules exits; use 'tules list' to watch
it and 'tules logs <id>' to read its output.

Multiple prompts launch in parallel as independent jobs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cfg, err := buildSupervisor(cmd)
			if err != nil {
				return err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			opts := supervisor.Options{
				WorkingDir:      cwd,
				Sandbox:         cfg.SandboxEnabled() && !noSandbox,
				SandboxImage:    image,
				BranchIsolation: cfg.BranchIsolationEnabled() && !noBranch,
			}
			if image == "" {
				opts.SandboxImage = cfg.SandboxImage
			}

			for _, prompt := range args {
				opts.Prompt = prompt
				rec, err := sup.Launch(cmd.Context(), opts)
				if err != nil {
					return err
				}

				fmt.Printf("%s job %s\n",
					theme.RunningStyle.Render("Started"), rec.ShortID())
				if rec.Branch != "" {
					fmt.Printf("  branch: %s\n", rec.Branch)
				}
				fmt.Printf("  log:    %s\n", rec.LogPath)
			}
			fmt.Printf("\nFollow output with 'tules logs <id> -f'.\n")
			return nil
		},
	}

	addProviderFlag(cmd)
	cmd.Flags().BoolVar(&noSandbox, "no-sandbox", false, "Run the provider directly instead of in a container")
	cmd.Flags().BoolVar(&noBranch, "no-branch", false, "Skip per-job git branch creation")
	cmd.Flags().StringVar(&image, "image", "", "Sandbox image override (default tules-<provider>:latest)")
	return cmd
}
