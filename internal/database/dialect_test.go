package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("DSN", func(t *testing.T) {
		result := dialect.DSN(DialectConfig{Path: "./saodo.db"})
		if result != "./saodo.db" {
			t.Errorf("DSN() = %v, want ./saodo.db", result)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("UpsertSettingQuery", func(t *testing.T) {
		result := dialect.RewriteQuery(dialect.UpsertSettingQuery())
		if !strings.Contains(result, "VALUES ($1, $2)") {
			t.Errorf("UpsertSettingQuery() = %v, want numbered placeholders after rewrite", result)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("DSN adds parseTime", func(t *testing.T) {
		tests := []struct {
			url      string
			expected string
		}{
			{"u:p@tcp(db:3306)/saodo", "u:p@tcp(db:3306)/saodo?parseTime=true"},
			{"u:p@tcp(db:3306)/saodo?charset=utf8mb4", "u:p@tcp(db:3306)/saodo?charset=utf8mb4&parseTime=true"},
			{"u:p@tcp(db:3306)/saodo?parseTime=false", "u:p@tcp(db:3306)/saodo?parseTime=false"},
		}
		for _, tt := range tests {
			if result := dialect.DSN(DialectConfig{URL: tt.url}); result != tt.expected {
				t.Errorf("DSN(%q) = %v, want %v", tt.url, result, tt.expected)
			}
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM classes WHERE id = ?",
			expected: "SELECT * FROM classes WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM classes WHERE id = ?",
			expected: "SELECT * FROM classes WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO classes (id, name, grade) VALUES (?, ?, ?)",
			expected: "INSERT INTO classes (id, name, grade) VALUES ($1, $2, $3)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE classes SET name = ?, grade = ? WHERE id = ?",
			expected: "UPDATE classes SET name = ?, grade = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	content := `
-- header comment
CREATE TABLE a (id TEXT);

CREATE INDEX idx_a ON a(id);
-- trailing comment
`
	result := SplitStatements(content)
	if len(result) != 2 {
		t.Fatalf("SplitStatements() returned %d statements, want 2: %q", len(result), result)
	}
	if result[0] != "CREATE TABLE a (id TEXT)" {
		t.Errorf("statement 0 = %q", result[0])
	}
	if result[1] != "CREATE INDEX idx_a ON a(id)" {
		t.Errorf("statement 1 = %q", result[1])
	}
}
