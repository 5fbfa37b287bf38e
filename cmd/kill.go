package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tules/tules/tui/theme"
)

// NewKillCmd creates the `kill` command.
func NewKillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kill <id>",
		Short: "Terminate a running job",
		Long: `Sends SIGTERM to the job's process group and marks the job killed. Fails
when the job has already finished. The id may be any unique prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, _, err := buildSupervisor(cmd)
			if err != nil {
				return err
			}

			rec, err := sup.Kill(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s job %s\n", theme.ErrorStyle.Render("Killed"), rec.ShortID())
			if rec.OriginalBranch != "" {
				fmt.Printf("  launched from branch %s; its work is on %s\n",
					rec.OriginalBranch, rec.Branch)
			}
			return nil
		},
	}

	addProviderFlag(cmd)
	return cmd
}
