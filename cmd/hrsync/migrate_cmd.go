package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/config"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/pkg/database"
	applogger "github.com/TravisDev5x/HELPDESKREACT26-sub000/pkg/logger"
)

type migrateResult struct {
	Status  string `json:"status"`
	Version uint   `json:"version"`
}

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return withCode(exitConfig, err)
			}
			logger, err := applogger.NewLogger(&cfg.Log)
			if err != nil {
				return withCode(exitConfig, err)
			}
			defer logger.Sync()

			db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
			if err != nil {
				return withCode(exitDB, err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return withCode(exitDB, err)
			}
			defer sqlDB.Close()

			version, err := database.RunMigrations(sqlDB, logger)
			if err != nil {
				return withCode(exitDB, fmt.Errorf("迁移失败: %w", err))
			}
			return writeJSONLine(cmd.OutOrStdout(), migrateResult{Status: "migrated", Version: version})
		},
	}
}
