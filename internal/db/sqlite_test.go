package db

import (
	"path/filepath"
	"testing"
)

func TestDatabase_Migrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	d, err := NewDatabase(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	steps := []string{
		`CREATE TABLE a (id INTEGER PRIMARY KEY)`,
		`ALTER TABLE a ADD COLUMN name TEXT`,
	}
	if err := d.Migrate(steps[:1]); err != nil {
		t.Fatal(err)
	}
	if err := d.Migrate(steps); err != nil {
		t.Fatal(err)
	}
	// Re-running applies nothing.
	if err := d.Migrate(steps); err != nil {
		t.Fatal(err)
	}

	v, err := d.SchemaVersion()
	if err != nil || v != 2 {
		t.Fatalf("version = %d, %v", v, err)
	}
	if _, err := d.Exec(`INSERT INTO a (name) VALUES ('x')`); err != nil {
		t.Errorf("insert after migration: %v", err)
	}

	if err := d.Migrate(steps[:1]); err == nil {
		t.Error("expected error for a schema newer than the steps")
	}

	if size, err := d.Size(); err != nil || size == 0 {
		t.Errorf("size = %d, %v", size, err)
	}
}
