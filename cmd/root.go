package cmd

import (
	"fmt"
	"os"

	"venue-booking/core/config"
	"venue-booking/core/logger"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "venue-booking",
		Short: "Venue table booking API, notification worker and waitlist sweep",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Get()
			logger.Init(cfg.Log.Level, cfg.Log.Format)
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newWorkerCmd())
	root.AddCommand(newMigrateCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
