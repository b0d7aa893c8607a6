package database

import (
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Supported DATABASE_DRIVER values.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Connect establishes a connection to PostgreSQL or SQLite
func Connect(driver, databaseURL string) (*sqlx.DB, error) {
	if driver != Postgres && driver != SQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, databaseURL)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	if driver == SQLite {
		// one writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
