package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tules/tules/version"
)

// NewVersionCmd creates the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetInfo().String())
		},
	}
}
