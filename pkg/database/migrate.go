package database

import (
	"context"
	"fmt"
	"io/fs"

	"cinema-showtime/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrate applies every pending goose migration found in dir of fsys.
func Migrate(ctx context.Context, config utils.DatabaseConfig, fsys fs.FS, dir string, log *zap.Logger) error {
	connConfig, err := pgx.ParseConfig(ConnString(config))
	if err != nil {
		return fmt.Errorf("parse migration config: %w", err)
	}

	db := stdlib.OpenDB(*connConfig)
	defer db.Close()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	log.Info("Migrations applied", zap.String("dir", dir))
	return nil
}
