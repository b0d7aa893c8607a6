// Package store persists table snapshots and the game, player and shot
// history they belong to.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/migrations"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a frame, game, player or shot does not exist.
var ErrNotFound = errors.New("not found")

// Store owns the connection pool. All reads and writes go through a Session.
type Store struct {
	db       *sqlx.DB
	dialect  string
	bindType int
	log      zerolog.Logger
}

// New wraps db. The schema dialect follows the driver db was opened with.
func New(db *sqlx.DB, log zerolog.Logger) *Store {
	dialect := migrations.Postgres
	if db.DriverName() == migrations.SQLite {
		dialect = migrations.SQLite
	}
	return &Store{
		db:       db,
		dialect:  dialect,
		bindType: sqlx.BindType(db.DriverName()),
		log:      log.With().Str("component", "store").Logger(),
	}
}

// CreateSchema creates every table and index that does not exist yet.
// Existing tables and their rows are left untouched.
func (s *Store) CreateSchema(ctx context.Context) error {
	stmts, err := migrations.Statements(s.dialect)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}

	s.log.Debug().Str("dialect", s.dialect).Int("statements", len(stmts)).Msg("schema ready")
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Session holds one connection for the lifetime of a request. Callers must
// Close it on every path, typically with defer.
type Session struct {
	conn     *sqlx.Conn
	bindType int
	log      zerolog.Logger
}

// Session acquires a connection from the pool.
func (s *Store) Session(ctx context.Context) (*Session, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn, bindType: s.bindType, log: s.log}, nil
}

// Close returns the connection to the pool.
func (s *Session) Close() error {
	return s.conn.Close()
}

// inTx runs fn in a transaction on the session's connection, committing only
// if fn succeeds.
func (s *Session) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// queryer is satisfied by both the session connection and its transactions.
type queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// rebind converts ? placeholders to the driver's bind style.
func (s *Session) rebind(query string) string {
	return sqlx.Rebind(s.bindType, query)
}

// insertID runs an INSERT ... RETURNING query and scans the new id.
func (s *Session) insertID(ctx context.Context, q queryer, query string, args ...interface{}) (int, error) {
	var id int
	if err := sqlx.GetContext(ctx, q, &id, s.rebind(query), args...); err != nil {
		return 0, err
	}
	return id, nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
