package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"onlinesync/internal/structures"
)

var flags = &structures.CliFlags{}

var rootCmd = &cobra.Command{
	Use:           "onlinesync",
	Short:         "onlinesync scrapes the DamaDam online list and syncs profiles into CSV and Google Sheets.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "Path to the YAML config file.")
	rootCmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", ".env", "Env file loaded before reading the environment.")
	rootCmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
