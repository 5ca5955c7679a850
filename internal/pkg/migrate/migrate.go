// Package migrate applies the embedded SQL schema with golang-migrate.
package migrate

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

var (
	ErrEmptyDSN         = errors.New("migrate: database url is empty")
	ErrInvalidDirection = errors.New("migrate: direction must be up or down")
)

// Run applies every migration in direction against dsn.
// Being already at the target version is not an error.
func Run(dsn, direction string) error {
	if dsn == "" {
		return ErrEmptyDSN
	}
	if direction != DirectionUp && direction != DirectionDown {
		return fmt.Errorf("%w: got %q", ErrInvalidDirection, direction)
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if direction == DirectionUp {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// Up is shorthand for Run(dsn, DirectionUp).
func Up(dsn string) error {
	return Run(dsn, DirectionUp)
}
