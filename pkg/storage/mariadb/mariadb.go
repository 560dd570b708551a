package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/c14220110/hospital-dashboard/config"
)

// DSN builds the driver connection string from the configuration.
// parseTime is always on so DATE and DATETIME columns scan into time.Time.
func DSN(cfg *config.Config) (string, error) {
	loc := time.Local
	if cfg.DBTimezone != "" && cfg.DBTimezone != "Local" {
		l, err := time.LoadLocation(cfg.DBTimezone)
		if err != nil {
			return "", fmt.Errorf("load DB_TIMEZONE %q: %w", cfg.DBTimezone, err)
		}
		loc = l
	}

	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = cfg.DBHost + ":" + cfg.DBPort
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = loc
	mc.MultiStatements = false
	return mc.FormatDSN(), nil
}

// Connect opens the pool and verifies the server is reachable.
func Connect(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().Str("host", cfg.DBHost).Str("database", cfg.DBName).Msg("connected to MariaDB")
	return db, nil
}
