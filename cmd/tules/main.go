package main

import (
	"os"

	"github.com/tules/tules/cli"
	"github.com/tules/tules/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"tules",
		"Run AI agents as detached background jobs and browse their sessions",
	)

	rootCmd.AddCommand(cmd.NewRunCmd())
	rootCmd.AddCommand(cmd.NewAskCmd())
	rootCmd.AddCommand(cmd.NewListCmd())
	rootCmd.AddCommand(cmd.NewLogsCmd())
	rootCmd.AddCommand(cmd.NewKillCmd())
	rootCmd.AddCommand(cmd.NewClearCmd())
	rootCmd.AddCommand(cmd.NewSessionsCmd())
	rootCmd.AddCommand(cmd.NewDoctorCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		handler := cli.NewErrorHandler(verbose)
		os.Exit(handler.Handle(err))
	}
}
