package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the version of vmsim. It is overwritten at link time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of vmsim.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vmsim %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
