package db

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"airdrop-go/internal/config"
)

//go:embed schema/*.sql
var schemas embed.FS

// Open connects to the configured store. sqlite is held to a single
// connection so the whole process shares one session.
func Open(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	conn, err := sqlx.ConnectContext(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		conn.SetMaxOpenConns(1)
	}
	return conn, nil
}

// EnsureSchema creates the tables if they are absent. It never alters
// existing tables.
func EnsureSchema(ctx context.Context, conn *sqlx.DB) error {
	content, err := schemas.ReadFile("schema/" + conn.DriverName() + ".sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := conn.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
