package db

import (
	"context"
	"fmt"
	"time"

	"snapfeed/internal/config"
	"snapfeed/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 创建有界连接池。不做启动 ping，数据库不可达时错误延迟到请求阶段
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Warn),
		NowFunc:              func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return gdb, nil
}

// EnsureSchema creates the posts table when it is absent. Safe to call on every start.
func EnsureSchema(ctx context.Context, gdb *gorm.DB) error {
	if err := gdb.WithContext(ctx).AutoMigrate(&models.Post{}); err != nil {
		return fmt.Errorf("migrate posts: %w", err)
	}
	return nil
}

// Init opens the database and ensures the schema. A schema failure is logged and
// the handle is still returned so requests can retry once the database is back.
func Init(ctx context.Context, cfg config.DBConfig) (*gorm.DB, error) {
	gdb, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	migrateCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		migrateCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout+cfg.QueryTimeout)
		defer cancel()
	}

	if err := EnsureSchema(migrateCtx, gdb); err != nil {
		zap.L().Error("schema initialisation failed, continuing", zap.Error(err))
		return gdb, nil
	}
	zap.L().Info("database schema ready", zap.String("driver", cfg.Driver))
	return gdb, nil
}
