package database

import (
	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/pkg/config"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the Postgres connection and applies the pool settings
func InitDB(cfg *config.DBConfig) (*gorm.DB, error) {
	log := logger.GetLogger()

	pgConfig := postgres.Config{
		DSN:                  cfg.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	conn, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get database object")
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("Database connected successfully",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.DBName))

	return conn, nil
}

// Migrate creates or updates every table
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(model.AllModels()...); err != nil {
		return errors.Wrap(err, "run database migrations")
	}
	logger.GetLogger().Info("Database migrations applied", zap.Int("models", len(model.AllModels())))
	return nil
}
