package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/triplethreads/hubstock-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_inventory_lines.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS inventory_lines",
		"CHECK (quantity >= 0)",
		"PRIMARY KEY (sku, hub)",
		"DROP TABLE IF EXISTS inventory_lines",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLogEntriesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_log_entries.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS log_entries",
		"CHECK (action IN ('IN', 'OUT'))",
		"CHECK (qty > 0)",
		"idx_log_entries_line",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestShipmentsMigrationKeepsLegacyColumnAndStatuses(t *testing.T) {
	content := readMigration(t, "*_create_shipments.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS shipments",
		"skus TEXT NOT NULL",
		"DEFAULT 'Pending'",
		"CHECK (status IN ('Pending', 'Received', 'Deleted'))",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
