// Package postgres holds the embedded SQL schema and applies it with
// golang-migrate.
package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed sql/*.sql
var FS embed.FS

type Command string

const (
	Up    Command = "up"
	Down  Command = "down"
	Force Command = "force"
)

// Open connects through the pgx database/sql driver, which the migrate
// postgres driver needs.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("db driver: %w", err)
	}
	srcDriver, err := iofs.New(FS, "sql")
	if err != nil {
		return nil, fmt.Errorf("source driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Run applies cmd. version is only read by Force. A schema that is already
// current is not an error.
func Run(db *sql.DB, cmd Command, version int) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	switch cmd {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	case Force:
		err = m.Force(version)
	default:
		return fmt.Errorf("unknown migration command %q", cmd)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", cmd, err)
	}
	return nil
}
