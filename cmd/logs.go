package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	var (
		follow bool
		lines  int
	)

	cmd := &cobra.Command{
		Use:   "logs <id>",
		Short: "Show a job's log output",
		Long: `Prints the last lines of a job's log. With -f, keeps streaming new output
until interrupted or until the job's output stream ends. The id may be any
unique prefix of the full job id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cfg, err := buildSupervisor(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("lines") {
				lines = cfg.DefaultLogLines()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return sup.TailLogs(ctx, args[0], lines, follow, os.Stdout)
		},
	}

	addProviderFlag(cmd)
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	return cmd
}
