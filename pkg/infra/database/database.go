package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB wraps the decision log connection.
type DB struct {
	logger *logrus.Logger
	*gorm.DB
}

type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open_conns"`
	MaxIdle  int    `mapstructure:"max_idle_conns"`
}

func (c *Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// NewDB opens the postgres connection, configures the pool and applies
// pending migrations.
func NewDB(logger *logrus.Logger, cfg *Config) (*DB, error) {
	logger.WithFields(logrus.Fields{
		"host":    cfg.Host,
		"port":    cfg.Port,
		"db":      cfg.DBName,
		"user":    cfg.User,
		"sslmode": cfg.SSLMode,
	}).Info("connecting to database")

	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql DB: %w", err)
	}
	maxOpen, maxIdle := cfg.MaxOpen, cfg.MaxIdle
	if maxOpen <= 0 {
		maxOpen = 50
	}
	if maxIdle <= 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	db := &DB{logger: logger, DB: gormDB}

	logger.WithField("timeout", "30s").Info("applying database migrations")
	migCtx, migCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer migCancel()
	migErrCh := make(chan error, 1)
	go func() {
		migErrCh <- NewMigrationsManager(db.DB).ApplyPending()
	}()
	select {
	case err := <-migErrCh:
		if err != nil {
			logger.WithError(err).Error("failed to apply database migrations")
			return nil, fmt.Errorf("failed to apply database migrations: %w", err)
		}
		logger.Info("database migrations applied")
	case <-migCtx.Done():
		logger.WithError(migCtx.Err()).Error("database migrations timed out")
		return nil, fmt.Errorf("database migrations timed out: %w", migCtx.Err())
	}

	return db, nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
