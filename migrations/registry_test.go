package migrations

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	bankledger "github.com/goliatone/go-bank-ledger"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
		case DialectSQLite:
			sqliteFound = true
		}
	}

	if !postgresFound {
		t.Fatalf("expected postgres filesystem")
	}
	if !sqliteFound {
		t.Fatalf("expected sqlite filesystem")
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(calls))
	}
	if calls[0] != DialectSQLite {
		t.Fatalf("expected sqlite registration, got %q", calls[0])
	}
}

func TestRegister_DefaultSourceLabel(t *testing.T) {
	var label string
	reg, err := Register(context.Background(), func(_ context.Context, _ string, sourceLabel string, _ fs.FS) error {
		label = sourceLabel
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if label != "go-bank-ledger" {
		t.Fatalf("expected default source label, got %q", label)
	}
	if reg.SourceLabel != "go-bank-ledger" {
		t.Fatalf("unexpected registration label %q", reg.SourceLabel)
	}
}

func TestRegister_RequiresRegisterFunc(t *testing.T) {
	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected missing register function to fail")
	}
}

func TestLedgerSchemaMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := bankledger.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/20240427000001_ledger_schema.up.sql",
		"data/sql/migrations/20240427000001_ledger_schema.down.sql",
		"data/sql/migrations/sqlite/20240427000001_ledger_schema.up.sql",
		"data/sql/migrations/sqlite/20240427000001_ledger_schema.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestLedgerSchemaMigration_DeclaresCoreConstraints(t *testing.T) {
	root := bankledger.GetMigrationsFS()
	for _, migrationPath := range []string{
		"data/sql/migrations/20240427000001_ledger_schema.up.sql",
		"data/sql/migrations/sqlite/20240427000001_ledger_schema.up.sql",
	} {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		sql := strings.ToLower(string(content))
		for _, fragment := range []string{"ledger_organizations", "ledger_payments", "ledger_balance_log", "operation_id", "balance >= 0"} {
			if !strings.Contains(sql, fragment) {
				t.Fatalf("expected %s to contain %q", migrationPath, fragment)
			}
		}
	}
}
