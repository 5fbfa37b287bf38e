package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewClearCmd creates the `clear` command.
func NewClearCmd() *cobra.Command {
	var (
		deleteLogs bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "clear [job-id...]",
		Short: "Remove job records",
		Long: `Deletes records from the job store. With no arguments every record is
removed; with job IDs (or unambiguous prefixes) only those records are
removed, along with their log files. Running jobs keep running; only the
bookkeeping is removed. Pass --logs to delete log files as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, _, err := buildSupervisor(cmd)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				for _, arg := range args {
					rec, err := sup.Store().Remove(arg)
					if err != nil {
						return err
					}
					fmt.Printf("Removed %s.\n", rec.ShortID())
				}
				return nil
			}

			if !force {
				fmt.Print("Remove all job records? [y/N] ")
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
					fmt.Println("Aborted.")
					return nil
				}
			}

			removed, err := sup.Store().Clear(deleteLogs)
			if err != nil {
				return err
			}

			fmt.Printf("Removed %d job record(s).\n", removed)
			if deleteLogs {
				fmt.Println("Log files deleted.")
			}
			return nil
		},
	}

	addProviderFlag(cmd)
	cmd.Flags().BoolVar(&deleteLogs, "logs", false, "Also delete log files")
	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation")
	return cmd
}
