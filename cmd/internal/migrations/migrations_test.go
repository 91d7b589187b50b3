package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestFS_ContainsOrderedGooseFiles(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(FS(), ".")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	want := []string{"00001_accounts.sql", "00002_audit_log.sql"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Name() != want[i] {
			t.Fatalf("entry[%d]=%q want %q", i, e.Name(), want[i])
		}

		b, err := fs.ReadFile(FS(), e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		body := string(b)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Fatalf("%s: missing goose annotations", e.Name())
		}
	}
}

func TestAccountsMigration_EnforcesLoginUniqueness(t *testing.T) {
	t.Parallel()

	b, err := fs.ReadFile(FS(), "00001_accounts.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	body := string(b)

	for _, frag := range []string{
		"CONSTRAINT uq_users_login UNIQUE (login)",
		"CONSTRAINT chk_current_session_singleton CHECK (id = 1)",
	} {
		if !strings.Contains(body, frag) {
			t.Fatalf("missing %q", frag)
		}
	}
}
