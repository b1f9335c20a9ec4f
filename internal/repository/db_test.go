package repository

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestNewDBCreatesDirectoryAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "planner.db")
	db, err := NewDB(path, nil)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	defer sqlDB.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	for _, table := range []string{"users", "tasks", "categories", "routines", "routine_logs"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewDBInMemory(t *testing.T) {
	db, err := NewDB(":memory:", nil)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if !db.Migrator().HasTable("routine_logs") {
		t.Error("routine_logs missing from in-memory database")
	}
}

func TestEnsureDirForSQLite(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{"memory", ":memory:"},
		{"memory mode", "file:test?mode=memory&cache=shared"},
		{"current dir", "planner.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ensureDirForSQLite(tt.dsn); err != nil {
				t.Errorf("ensureDirForSQLite(%q) error = %v", tt.dsn, err)
			}
		})
	}
}
