package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every pending schema migration. golang-migrate takes an
// advisory lock, so concurrent starts are safe.
func (d *Driver) Migrate(ctx context.Context) error {
	return d.migrate(ctx, func(m *migrate.Migrate) error { return m.Up() }, "up")
}

// MigrateDown reverts every applied schema migration.
func (d *Driver) MigrateDown(ctx context.Context) error {
	return d.migrate(ctx, func(m *migrate.Migrate) error { return m.Down() }, "down")
}

func (d *Driver) migrate(ctx context.Context, run func(*migrate.Migrate) error, direction string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	// The *sql.DB borrows connections from the pool; closing it leaves the
	// pool open.
	db := stdlib.OpenDBFromPool(d.pool)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("migrate %s: %w", direction, translate("migrate", err, nil))
	}

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := run(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	return nil
}
