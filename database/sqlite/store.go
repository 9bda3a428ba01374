// Package sqlite persists a parameter database in a SQLite file.
//
// Expression values are stored as their JSON tree; sublattices, constituent
// arrays and model hints as JSON documents. Loading always produces a
// database.Memory.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/expr"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a SQLite-backed parameter database file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and brings its
// schema up to date.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the file the store was opened on.
func (s *Store) Path() string { return s.path }

// Save replaces the stored content with m in one transaction.
func (s *Store) Save(ctx context.Context, m *database.Memory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"phases", "symbols", "parameters"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, name := range m.PhaseNames() {
		p, err := m.Phase(name)
		if err != nil {
			return err
		}
		sublattices, err := json.Marshal(p.Sublattices)
		if err != nil {
			return err
		}
		constituents, err := json.Marshal(p.Constituents)
		if err != nil {
			return err
		}
		hints, err := json.Marshal(p.Hints)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO phases (position, name, sublattices, constituents, hints) VALUES (?, ?, ?, ?, ?)`,
			i, p.Name, string(sublattices), string(constituents), string(hints)); err != nil {
			return fmt.Errorf("failed to insert phase %s: %w", p.Name, err)
		}
	}

	symbols := m.Symbols()
	for _, name := range m.SymbolNames() {
		value, err := expr.ToJSON(symbols[name])
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO symbols (name, value) VALUES (?, ?)`, name, value); err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", name, err)
		}
	}

	for _, p := range m.Parameters() {
		constituents, err := json.Marshal(p.Constituents)
		if err != nil {
			return err
		}
		value, err := expr.ToJSON(p.Value)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parameters (phase_name, parameter_type, constituent_array, parameter_order, value, reference, diffusing_species)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.PhaseName, p.Type, string(constituents), p.Order, value, p.Reference, p.DiffusingSpecies); err != nil {
			return fmt.Errorf("failed to insert parameter %s: %w", p, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Load reads the stored content into a new in-memory database.
func (s *Store) Load(ctx context.Context) (*database.Memory, error) {
	m := database.NewMemory()
	if err := s.loadSymbols(ctx, m); err != nil {
		return nil, err
	}
	if err := s.loadPhases(ctx, m); err != nil {
		return nil, err
	}
	if err := s.loadParameters(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) loadSymbols(ctx context.Context, m *database.Memory) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM symbols ORDER BY name`)
	if err != nil {
		return fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return fmt.Errorf("failed to scan symbol: %w", err)
		}
		e, err := expr.UnmarshalJSON([]byte(value))
		if err != nil {
			return fmt.Errorf("%w: symbol %s: %v", database.ErrInvalidRecord, name, err)
		}
		m.AddSymbol(name, e)
	}
	return rows.Err()
}

func (s *Store) loadPhases(ctx context.Context, m *database.Memory) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, sublattices, constituents, hints FROM phases ORDER BY position`)
	if err != nil {
		return fmt.Errorf("failed to query phases: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, sublattices, constituents, hints string
		if err := rows.Scan(&name, &sublattices, &constituents, &hints); err != nil {
			return fmt.Errorf("failed to scan phase: %w", err)
		}
		p := database.Phase{Name: name}
		if err := unmarshalColumns(
			column{"sublattices", sublattices, &p.Sublattices},
			column{"constituents", constituents, &p.Constituents},
			column{"hints", hints, &p.Hints},
		); err != nil {
			return fmt.Errorf("phase %s: %w", name, err)
		}
		if err := m.AddPhase(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) loadParameters(ctx context.Context, m *database.Memory) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT phase_name, parameter_type, constituent_array, parameter_order, value, reference, diffusing_species
		 FROM parameters ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to query parameters: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			p                   database.Parameter
			constituents, value string
		)
		if err := rows.Scan(&p.PhaseName, &p.Type, &constituents, &p.Order, &value, &p.Reference, &p.DiffusingSpecies); err != nil {
			return fmt.Errorf("failed to scan parameter: %w", err)
		}
		if err := unmarshalColumns(column{"constituent_array", constituents, &p.Constituents}); err != nil {
			return err
		}
		if p.Value, err = expr.UnmarshalJSON([]byte(value)); err != nil {
			return fmt.Errorf("%w: %s value: %v", database.ErrInvalidRecord, p, err)
		}
		if err := m.AddParameter(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

type column struct {
	name string
	text string
	dst  any
}

func unmarshalColumns(cols ...column) error {
	for _, c := range cols {
		if err := json.Unmarshal([]byte(c.text), c.dst); err != nil {
			return fmt.Errorf("%w: column %s: %v", database.ErrInvalidRecord, c.name, err)
		}
	}
	return nil
}
