package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/database/sqlite"
)

type fileKind int

const (
	kindYAML fileKind = iota + 1
	kindSQLite
)

func kindOf(path string) (fileKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return kindYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return kindSQLite, nil
	}
	return 0, fmt.Errorf("%s: unknown database format, want .yaml, .yml, .db or .sqlite", path)
}

// loadDatabase reads a YAML snapshot or a SQLite store into memory.
func loadDatabase(ctx context.Context, path string) (*database.Memory, error) {
	kind, err := kindOf(path)
	if err != nil {
		return nil, err
	}
	if kind == kindYAML {
		return database.LoadYAMLFile(path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(ctx)
}

// saveDatabase writes db to path, replacing any previous contents.
func saveDatabase(ctx context.Context, path string, db *database.Memory) error {
	kind, err := kindOf(path)
	if err != nil {
		return err
	}
	if kind == kindSQLite {
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Save(ctx, db)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := database.WriteYAML(f, db); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
