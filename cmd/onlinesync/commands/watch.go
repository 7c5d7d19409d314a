package commands

import (
	"github.com/spf13/cobra"

	"onlinesync/internal/di"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Runs a sync cycle every schedule.interval until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := di.InitApp(flags)
		if err != nil {
			return err
		}
		defer cleanup()

		return app.Watch(cmd.Context())
	},
}
