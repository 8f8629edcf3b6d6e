// Package testing provides testing utilities and helpers shared by package tests.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aristath/phasespace/internal/database"
	"github.com/aristath/phasespace/internal/modules/distribution"
)

// NewTestDB creates a file-backed SQLite database in a per-test temporary
// directory and applies the embedded schema for name. The database is closed
// when the test finishes.
//
// Supported schema names:
//   - "snapshots" - applies snapshots_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileCache,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}
	return db
}

// NopLogger returns a logger that discards everything.
func NopLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// NewTestGrid returns the populated 2×3 grid [[1,5,2],[4,0,3]] over axes
// {-1,1} and {0,0.5,1}.
func NewTestGrid(t *testing.T) *distribution.Grid {
	t.Helper()
	g, err := distribution.NewGridWithData(
		[]float64{1, 5, 2, 4, 0, 3},
		[][]float64{{-1, 1}, {0, 0.5, 1}},
		[]string{distribution.LabelReAlpha, distribution.LabelImAlpha},
	)
	if err != nil {
		t.Fatalf("Failed to create test grid: %v", err)
	}
	return g
}
