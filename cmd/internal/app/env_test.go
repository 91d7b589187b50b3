package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ACCOUNTD_T_STR", "  value ")
	t.Setenv("ACCOUNTD_T_BOOL", "nope")
	t.Setenv("ACCOUNTD_T_INT", "-3")
	t.Setenv("ACCOUNTD_T_INT32", "7")
	t.Setenv("ACCOUNTD_T_DUR", "2s")

	if got := EnvString("ACCOUNTD_T_STR", "def"); got != "value" {
		t.Fatalf("EnvString=%q", got)
	}
	if got := EnvString("ACCOUNTD_T_MISSING", "def"); got != "def" {
		t.Fatalf("EnvString default=%q", got)
	}
	if got := EnvBool("ACCOUNTD_T_BOOL", true); !got {
		t.Fatalf("EnvBool must fall back on parse error")
	}
	if got := EnvInt("ACCOUNTD_T_INT", 9); got != 9 {
		t.Fatalf("EnvInt must reject non-positive, got %d", got)
	}
	if got := EnvInt32("ACCOUNTD_T_INT32", 1); got != 7 {
		t.Fatalf("EnvInt32=%d", got)
	}
	if got := EnvDuration("ACCOUNTD_T_DUR", time.Second); got != 2*time.Second {
		t.Fatalf("EnvDuration=%v", got)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"ACCOUNTD_HTTP_ADDR", "ACCOUNTD_LOG_FORMAT", "ACCOUNTD_DATABASE_URL",
		"ACCOUNTD_DB_SCHEMA", "ACCOUNTD_DB_MIGRATE", "ACCOUNTD_READINESS_REQUIRE_DB",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	if cfg.HTTPAddr != "0.0.0.0:8080" || cfg.LogFormat != "json" || cfg.DatabaseURL != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DBSchema != "accountd" || !cfg.DBMigrate || cfg.ReadinessRequireDB {
		t.Fatalf("unexpected db defaults: %+v", cfg)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("ACCOUNTD_T_FROM_FILE=from-file\nACCOUNTD_T_PRESET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("ACCOUNTD_ENV_FILE", path)
	t.Setenv("ACCOUNTD_T_PRESET", "from-env")
	// godotenv only fills variables that are unset.
	unsetEnv(t, "ACCOUNTD_T_FROM_FILE")

	if err := LoadEnvFile(); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("ACCOUNTD_T_FROM_FILE"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("ACCOUNTD_T_PRESET"); got != "from-env" {
		t.Fatalf("existing env must win, got %q", got)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	t.Setenv("ACCOUNTD_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	if err := LoadEnvFile(); err != nil {
		t.Fatalf("missing env file must be ignored, got %v", err)
	}
}
