package testutil

import (
	"database/sql"
	"embed"
	"testing"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

//go:embed migrations/*.sql
var migrations embed.FS

// OpenSampleDB opens an in-memory SQLite database migrated to the sample
// person/document/cat schema and seeded with rows that include duplicate sort
// keys and NULLs. The database is closed when the test ends.
func OpenSampleDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	migrate(t, db)
	return db
}

// CreateSampleDB writes the migrated and seeded sample database to a SQLite
// file at path.
func CreateSampleDB(t testing.TB, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = db.Close() }()
	migrate(t, db)
}

func migrate(t testing.TB, db *sql.DB) {
	t.Helper()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite"); err != nil {
		t.Fatalf("failed to set dialect: %v", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
}
