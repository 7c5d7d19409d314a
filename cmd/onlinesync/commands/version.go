package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"onlinesync/internal/providers"
)

// Version is set at build time with -ldflags "-X onlinesync/cmd/onlinesync/commands.Version=...".
var Version = "dev"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", providers.AppName, Version)
	},
}
