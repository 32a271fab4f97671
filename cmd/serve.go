package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"venue-booking/core/config"
	"venue-booking/core/database"
	"venue-booking/core/server"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if migrateUp {
				if err := migrate(ctx, cfg); err != nil {
					return err
				}
			}
			return server.Run(ctx, cfg)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply database migrations before serving")
	return cmd
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Deliver waitlist notifications and expire lapsed offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return server.RunWorker(ctx, config.Get())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), config.Get())
		},
	}
}

func migrate(ctx context.Context, cfg *config.Config) error {
	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	return database.Migrate(ctx, &db)
}
