package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/vinothroacs/kalyanmalai-backend/shared/utils"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 10 * time.Second

// DatabaseConfig describes the PostgreSQL connection and pool.
// URL, when set from DATABASE_URL, takes precedence over the individual fields.
type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Username        string
	Password        string
	Database        string
	SSLMode         string
	RunMigration    bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func NewDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:             utils.GetEnvOrDefault("DATABASE_URL", ""),
		Host:            utils.GetEnvOrDefault("DB_HOST", "localhost"),
		Port:            utils.GetEnvOrDefault("DB_PORT", "5432"),
		Username:        utils.GetEnvOrDefault("DB_USERNAME", "postgres"),
		Password:        utils.GetEnvOrDefault("DB_PASSWORD", "password"),
		Database:        utils.GetEnvOrDefault("DB_NAME", "kalyanmalai"),
		SSLMode:         utils.GetEnvOrDefault("DB_SSLMODE", "disable"),
		RunMigration:    utils.GetEnvOrDefault("RUN_MIGRATION", "false") == "true",
		MaxOpenConns:    utils.GetEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    utils.GetEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: utils.GetEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: utils.GetEnvDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
	}
}

// DSN returns a postgres:// URL with credentials escaped
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// AllModels lists every table owned by the service, parents before children
func AllModels() []any {
	return []any{
		&models.Member{},
		&models.Profile{},
		&models.Connection{},
		&models.Notification{},
		&models.EmailJob{},
	}
}

// ConnectGormDB opens the pool, verifies it with a ping and optionally migrates the schema
func ConnectGormDB(ctx context.Context, config *DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("Connected to PostgreSQL", "host", config.Host, "database", config.Database, "max_open_conns", config.MaxOpenConns)

	if !config.RunMigration {
		return db, nil
	}
	start := time.Now()
	if err := db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run auto-migration: %w", err)
	}
	slog.Info("Schema migrated", "tables", len(AllModels()), "duration", time.Since(start))
	return db, nil
}
