package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localpop/localpop-backend/pkg/migrate"
)

func TestPurchasesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_purchases_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no purchases migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE purchase_status AS ENUM ('Pending', 'Paid', 'Cancelled')",
		"CREATE TABLE IF NOT EXISTS purchases",
		"CONSTRAINT purchases_payment_token_key UNIQUE (payment_token)",
		"CHECK (amount > 0)",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE SET NULL",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Fatalf("purchases migration missing %q", check)
		}
	}
}

func TestOutboxMigrationIndexesDispatchQueue(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_email_outbox.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no email outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE email_status AS ENUM ('pending', 'sent', 'failed')",
		"CREATE INDEX IF NOT EXISTS idx_email_outbox_status_next ON email_outbox(status, next_attempt_at)",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Fatalf("outbox migration missing %q", check)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
