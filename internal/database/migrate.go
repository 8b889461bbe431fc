package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// マイグレーションSQLはバイナリに埋め込む。デプロイ先でファイル配置が不要になる。
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator は埋め込みSQLをソースとするmigrateインスタンスを生成する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations は未適用のマイグレーションをすべて適用し、
// 適用後のスキーマバージョンをログに記録する。
// すでに最新の場合は何もせず正常終了する。
func RunMigrations(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", verr)
	}
	if dirty {
		return fmt.Errorf("schema is dirty at version %d", version)
	}

	slog.Info("migrations applied",
		slog.Uint64("schema_version", uint64(version)),
		slog.Bool("no_change", errors.Is(err, migrate.ErrNoChange)),
	)
	return nil
}
