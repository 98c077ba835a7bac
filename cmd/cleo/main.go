package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joestump/cleo/internal/config"
)

// configPath is set by the --config flag shared by every subcommand.
var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "cleo",
		Short:         "A headless CMS backend",
		Long:          "Cleo serves posts, pages, extra content fields and files over a JSON API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./cleo.yaml, CLEO_* env vars override)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}
