package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"

	migrate "github.com/golang-migrate/migrate/v4"
	// registers the postgres:// scheme for golang-migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus describes the schema version of the hosted store.
type MigrationStatus struct {
	Current uint
	Dirty   bool
	Pending []uint
}

func migrationSource() (source.Driver, error) {
	return iofs.New(migrationsFS, "migrations")
}

// AvailableVersions lists the versions of the embedded SQL migrations in order.
func AvailableVersions(src source.Driver) ([]uint, error) {
	v, err := src.First()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	versions := []uint{v}
	for {
		next, err := src.Next(v)
		if errors.Is(err, os.ErrNotExist) {
			return versions, nil
		}
		if err != nil {
			return nil, err
		}
		versions = append(versions, next)
		v = next
	}
}

// PendingAfter returns the versions above current.
func PendingAfter(versions []uint, current uint) []uint {
	var pending []uint
	for _, v := range versions {
		if v > current {
			pending = append(pending, v)
		}
	}
	return pending
}

func newMigrator(databaseURL string) (*migrate.Migrate, []uint, error) {
	src, err := migrationSource()
	if err != nil {
		return nil, nil, fmt.Errorf("load migrations: %w", err)
	}
	versions, err := AvailableVersions(src)
	if err != nil {
		return nil, nil, fmt.Errorf("list migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open migrator: %w", err)
	}
	return m, versions, nil
}

func status(m *migrate.Migrate, versions []uint) (MigrationStatus, error) {
	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, err
	}
	return MigrationStatus{Current: current, Dirty: dirty, Pending: PendingAfter(versions, current)}, nil
}

// migrationsTable is where golang-migrate records the applied version.
const migrationsTable = "schema_migrations"

// SQLMigrationStatus reports the current and pending schema versions. It only reads:
// a database that has never been migrated reports version 0.
func SQLMigrationStatus(ctx context.Context, conn *gorm.DB) (MigrationStatus, error) {
	src, err := migrationSource()
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("load migrations: %w", err)
	}
	defer src.Close()
	versions, err := AvailableVersions(src)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("list migrations: %w", err)
	}

	conn = conn.WithContext(ctx)
	if !conn.Migrator().HasTable(migrationsTable) {
		return MigrationStatus{Pending: versions}, nil
	}
	var row struct {
		Version int64
		Dirty   bool
	}
	res := conn.Raw("SELECT version, dirty FROM " + migrationsTable + " LIMIT 1").Scan(&row)
	if res.Error != nil {
		return MigrationStatus{}, fmt.Errorf("read schema version: %w", res.Error)
	}
	if res.RowsAffected == 0 || row.Version < 0 {
		return MigrationStatus{Pending: versions}, nil
	}
	current := uint(row.Version)
	return MigrationStatus{Current: current, Dirty: row.Dirty, Pending: PendingAfter(versions, current)}, nil
}

// RunSQLMigrations applies all pending embedded migrations and returns the resulting status.
func RunSQLMigrations(databaseURL string) (MigrationStatus, error) {
	m, versions, err := newMigrator(databaseURL)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationStatus{}, err
	}
	return status(m, versions)
}
