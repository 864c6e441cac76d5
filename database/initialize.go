package database

import (
	"fmt"
	"strings"

	"taskdo-service/config"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/db/migrations"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeDatabase opens the connection and applies pending migrations.
// The caller owns the returned handle and must Close it on shutdown.
func InitializeDatabase(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dbConn := db.GetDBConnection(db.DatabaseConfig{
		DRIVER: cfg.Driver,
		DB:     cfg.Path,
	})

	// Every connection to ":memory:" is a separate database
	if strings.HasPrefix(cfg.Path, ":memory:") {
		dbConn.SetMaxOpenConns(1)
		dbConn.SetConnMaxLifetime(0)
	}

	if err := migrations.Migrate(dbConn, cfg.MigrationsDir); err != nil {
		logger.Error("Error while running migration", zap.Error(err))
		dbConn.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.MigrationsDir, err)
	}

	logger.Info("Database initialized successfully", zap.String("driver", cfg.Driver))
	return dbConn, nil
}
