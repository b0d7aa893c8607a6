package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Dialects with an embedded schema.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

const migrationsTable = "schema_migrations_migrate"

var versionRe = regexp.MustCompile(`^0*([0-9]+)_.*\.up\.sql$`)

// Statements returns the schema DDL for a dialect, one statement per entry,
// in migration order. Every statement is create-if-absent, so running them
// against an existing schema changes nothing.
func Statements(dialect string) ([]string, error) {
	ups, err := upFiles(files, dialect)
	if err != nil {
		return nil, err
	}

	var stmts []string
	for _, name := range ups {
		data, err := fs.ReadFile(files, path.Join(dialect, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		for _, stmt := range strings.Split(string(data), ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				stmts = append(stmts, stmt)
			}
		}
	}
	return stmts, nil
}

// Run applies the embedded Postgres migrations with golang-migrate. If the
// schema already exists (frames table present) but migrate's metadata table
// does not, the database is baselined to the latest version first.
func Run(databaseURL string, log zerolog.Logger) error {
	if databaseURL == "" {
		return errors.New("database URL is empty")
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open DB: %w", err)
	}
	defer sqlDB.Close()

	driver, err := pg.WithInstance(sqlDB, &pg.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	src, err := iofs.New(files, Postgres)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	var framesExist bool
	row := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name='frames')")
	if err := row.Scan(&framesExist); err == nil && framesExist {
		var migrateTableExist bool
		row2 := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", migrationsTable)
		if err := row2.Scan(&migrateTableExist); err == nil && !migrateTableExist {
			latest, err := LatestVersion(Postgres)
			if err == nil && latest > 0 {
				log.Info().Int("version", latest).Msg("baselining existing schema")
				if ferr := m.Force(latest); ferr != nil {
					log.Warn().Err(ferr).Int("version", latest).Msg("force to version failed")
				}
			}
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	log.Info().Msg("migrations applied (no changes or up completed)")
	return nil
}

// LatestVersion is the highest migration version embedded for a dialect.
func LatestVersion(dialect string) (int, error) {
	ups, err := upFiles(files, dialect)
	if err != nil {
		return 0, err
	}
	latest := 0
	for _, name := range ups {
		v, _ := strconv.Atoi(versionRe.FindStringSubmatch(name)[1])
		if v > latest {
			latest = v
		}
	}
	return latest, nil
}

// upFiles lists the up migrations of a dialect sorted by version.
func upFiles(fsys fs.FS, dialect string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dialect)
	if err != nil {
		return nil, fmt.Errorf("unknown dialect %q: %w", dialect, err)
	}

	type versioned struct {
		name    string
		version int
	}
	var ups []versioned
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := versionRe.FindStringSubmatch(e.Name())
		if len(m) < 2 {
			continue
		}
		v, _ := strconv.Atoi(m[1])
		ups = append(ups, versioned{name: e.Name(), version: v})
	}
	sort.Slice(ups, func(i, j int) bool { return ups[i].version < ups[j].version })

	names := make([]string, len(ups))
	for i, u := range ups {
		names[i] = u.name
	}
	return names, nil
}
