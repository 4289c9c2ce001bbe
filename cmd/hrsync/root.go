package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/config"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/importer"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/repository"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/service"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/pkg/database"
	applogger "github.com/TravisDev5x/HELPDESKREACT26-sub000/pkg/logger"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/pkg/redis"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "hrsync",
		Short:         "人员主数据导入与班次分配工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "配置文件路径（缺省查找 ./config/config.yaml）")

	cmd.AddCommand(newImportCmd(&opts))
	cmd.AddCommand(newAssignCmd(&opts))
	cmd.AddCommand(newMigrateCmd(&opts))
	return cmd
}

// Execute 执行根命令并按错误类型设置退出码
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}

// app 命令运行所需的依赖
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
	svc    *service.Service
}

// bootstrap 加载配置并连接数据库；Redis 可选
func bootstrap(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, withCode(exitConfig, err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, withCode(exitConfig, err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, withCode(exitDB, err)
	}

	aliases, err := importer.NewAliasTable(cfg.Import.HeaderAliases)
	if err != nil {
		return nil, withCode(exitConfig, err)
	}

	a := &app{cfg: cfg, logger: logger, db: db}

	var locker service.RowLocker
	if rdb, err := redis.NewClient(&cfg.Redis, logger); err != nil {
		logger.Warn("Redis 不可用，导入不加行锁", zap.Error(err))
	} else {
		a.rdb = rdb
		locker = rdb
	}

	a.svc = service.NewService(cfg, repository.NewRepository(db), aliases, locker, logger)
	return a, nil
}

func (a *app) Close() {
	if sqlDB, _ := a.db.DB(); sqlDB != nil {
		_ = sqlDB.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = a.logger.Sync()
}
