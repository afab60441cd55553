package main

import (
	"fmt"

	"order-webhook-service/config"
	pgStorage "order-webhook-service/internal/adapter/storage/postgres"
	"order-webhook-service/pkg/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
			return pgStorage.Migrate(cfg.Database.MigrationsPath, cfg.Database.DSN(), log)
		},
	}
}
