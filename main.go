package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/HKazz/project-3-back-end/config"
	"github.com/HKazz/project-3-back-end/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:          "project-manager",
		Short:        "Project and task management API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if err := logging.InitLogger(loaded.LogFile, loaded.LogLevel); err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		},
	}

	cmd.AddCommand(
		newServeCmd(cfg),
		newEnsureIndexesCmd(cfg),
	)
	return cmd
}
