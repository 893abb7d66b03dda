package shared

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

const migrationsTable = "schema_migrations"

// Migration is one versioned step of the history schema.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Migrator applies the embedded history migrations to a database.
type Migrator struct {
	db         *sql.DB
	logger     *log.Logger
	migrations []Migration
}

// NewMigrator loads the embedded migrations. A nil logger discards output.
func NewMigrator(db *sql.DB, logger *log.Logger) (*Migrator, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	migrations, err := loadMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return &Migrator{db: db, logger: logger, migrations: migrations}, nil
}

// RunMigrations brings db up to the latest schema version.
func RunMigrations(db *sql.DB) error {
	m, err := NewMigrator(db, nil)
	if err != nil {
		return err
	}
	_, err = m.Up(context.Background())
	return err
}

// RollbackMigration reverts the most recently applied migration of db.
func RollbackMigration(db *sql.DB) error {
	m, err := NewMigrator(db, nil)
	if err != nil {
		return err
	}
	return m.Down(context.Background())
}

// Latest is the highest version known to the binary.
func (m *Migrator) Latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

// Version reports the highest applied version, 0 for a fresh database.
func (m *Migrator) Version(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	var current int
	q := "SELECT COALESCE(MAX(version), 0) FROM " + migrationsTable
	if err := m.db.QueryRowContext(ctx, q).Scan(&current); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return current, nil
}

// Up applies every pending migration in version order and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range m.migrations {
		done, err := m.isApplied(ctx, mig.Version)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		insert := "INSERT INTO " + migrationsTable + " (version) VALUES (?)"
		if err := m.exec(ctx, mig.Up, insert, mig.Version); err != nil {
			return applied, fmt.Errorf("failed to apply migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Debug("applied migration", "version", mig.Version, "name", mig.Name)
		applied++
	}
	return applied, nil
}

// Down reverts the latest applied migration.
func (m *Migrator) Down(ctx context.Context) error {
	current, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		return fmt.Errorf("no migrations to rollback")
	}

	i := slices.IndexFunc(m.migrations, func(mig Migration) bool { return mig.Version == current })
	if i < 0 {
		return fmt.Errorf("migration version %d not found", current)
	}

	mig := m.migrations[i]
	remove := "DELETE FROM " + migrationsTable + " WHERE version = ?"
	if err := m.exec(ctx, mig.Down, remove, mig.Version); err != nil {
		return fmt.Errorf("failed to rollback migration %04d_%s: %w", mig.Version, mig.Name, err)
	}
	m.logger.Debug("rolled back migration", "version", mig.Version, "name", mig.Name)
	return nil
}

// Reset reverts every applied migration and applies them again, leaving empty history tables.
func (m *Migrator) Reset(ctx context.Context) error {
	for {
		current, err := m.Version(ctx)
		if err != nil {
			return err
		}
		if current == 0 {
			break
		}
		if err := m.Down(ctx); err != nil {
			return err
		}
	}
	_, err := m.Up(ctx)
	return err
}

func (m *Migrator) isApplied(ctx context.Context, version int) (bool, error) {
	var applied bool
	q := "SELECT EXISTS(SELECT 1 FROM " + migrationsTable + " WHERE version = ?)"
	if err := m.db.QueryRowContext(ctx, q, version).Scan(&applied); err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return applied, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// exec runs script and the bookkeeping statement in one transaction.
func (m *Migrator) exec(ctx context.Context, script, bookkeeping string, version int) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w\nStatement: %s", err, stmt)
		}
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, version); err != nil {
		return err
	}
	return tx.Commit()
}

// loadMigrations pairs the embedded "NNNN_name_{up,down}.sql" files by version.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		version, name, direction, ok := parseMigrationName(entry.Name())
		if entry.IsDir() || !ok {
			continue
		}

		content, err := migrationFiles.ReadFile(path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: name}
			byVersion[version] = mig
		}
		if direction == "up" {
			mig.Up = string(content)
		} else {
			mig.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.Up == "" || mig.Down == "" {
			return nil, fmt.Errorf("incomplete migration for version %d", mig.Version)
		}
		migrations = append(migrations, *mig)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })
	return migrations, nil
}

// parseMigrationName splits "0001_add_index_up.sql" into (1, "add_index", "up").
func parseMigrationName(file string) (version int, name, direction string, ok bool) {
	base, found := strings.CutSuffix(file, ".sql")
	if !found {
		return 0, "", "", false
	}
	prefix, rest, found := strings.Cut(base, "_")
	if !found {
		return 0, "", "", false
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, "", "", false
	}
	switch {
	case strings.HasSuffix(rest, "_up"):
		return version, strings.TrimSuffix(rest, "_up"), "up", true
	case strings.HasSuffix(rest, "_down"):
		return version, strings.TrimSuffix(rest, "_down"), "down", true
	}
	return 0, "", "", false
}

// splitStatements drops "--" comments and returns the non-empty statements of script.
func splitStatements(script string) []string {
	var stmts []string
	for _, raw := range strings.Split(script, ";") {
		var kept []string
		for _, line := range strings.Split(raw, "\n") {
			if idx := strings.Index(line, "--"); idx >= 0 {
				line = line[:idx]
			}
			if line = strings.TrimSpace(line); line != "" {
				kept = append(kept, line)
			}
		}
		if len(kept) > 0 {
			stmts = append(stmts, strings.Join(kept, "\n"))
		}
	}
	return stmts
}
