package password

import (
	"errors"
	"os"
	"strings"
	"testing"
)

var envKeys = []string{
	"ACCOUNTD_PASSWORD_MIN_LEN",
	"ACCOUNTD_PASSWORD_MAX_LEN",
	"ACCOUNTD_PASSWORD_REJECT_VERY_WEAK",
	"ACCOUNTD_ARGON2_MEMORY_KIB",
	"ACCOUNTD_ARGON2_ITERATIONS",
	"ACCOUNTD_ARGON2_PARALLELISM",
	"ACCOUNTD_ARGON2_SALT_LEN",
	"ACCOUNTD_ARGON2_KEY_LEN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	def := DefaultConfig()
	if cfg.Policy != (Policy{}) || cfg.Policy != def.Policy {
		t.Fatalf("default policy must be empty: got %+v", cfg.Policy)
	}
	if cfg.Params.MemoryKiB != def.Params.MemoryKiB || cfg.Params.Iterations != def.Params.Iterations {
		t.Fatalf("params mismatch: got %+v want %+v", cfg.Params, def.Params)
	}
}

func TestFromEnv_Override(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCOUNTD_PASSWORD_MIN_LEN", "10")
	t.Setenv("ACCOUNTD_PASSWORD_MAX_LEN", "200")
	t.Setenv("ACCOUNTD_PASSWORD_REJECT_VERY_WEAK", "yes")
	t.Setenv("ACCOUNTD_ARGON2_MEMORY_KIB", "32768")
	t.Setenv("ACCOUNTD_ARGON2_ITERATIONS", "4")
	t.Setenv("ACCOUNTD_ARGON2_PARALLELISM", "2")
	t.Setenv("ACCOUNTD_ARGON2_SALT_LEN", "24")
	t.Setenv("ACCOUNTD_ARGON2_KEY_LEN", "32")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	if cfg.Policy.MinLength != 10 || cfg.Policy.MaxLength != 200 || !cfg.Policy.RejectVeryWeak {
		t.Fatalf("policy override failed: %+v", cfg.Policy)
	}
	if cfg.Params.MemoryKiB != 32768 || cfg.Params.Iterations != 4 || cfg.Params.Parallelism != 2 {
		t.Fatalf("argon2 override failed: %+v", cfg.Params)
	}
	if cfg.Params.SaltLength != 24 || cfg.Params.KeyLength != 32 {
		t.Fatalf("len override failed: %+v", cfg.Params)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "min above max", env: map[string]string{"ACCOUNTD_PASSWORD_MIN_LEN": "20", "ACCOUNTD_PASSWORD_MAX_LEN": "10"}},
		{name: "negative min", env: map[string]string{"ACCOUNTD_PASSWORD_MIN_LEN": "-1"}},
		{name: "memory too small", env: map[string]string{"ACCOUNTD_ARGON2_MEMORY_KIB": "1024"}},
		{name: "not a number", env: map[string]string{"ACCOUNTD_ARGON2_ITERATIONS": "many"}},
		{name: "bad bool", env: map[string]string{"ACCOUNTD_PASSWORD_REJECT_VERY_WEAK": "maybe"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFromEnv_MinWithoutMax(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCOUNTD_PASSWORD_MIN_LEN", "8")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("min without max must be valid: %v", err)
	}
	if err := cfg.Validate(strings.Repeat("x", 10000)); err != nil {
		t.Fatalf("unbounded max must accept long passwords: %v", err)
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Check(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Params.SaltLength = 4
	if err := cfg.Check(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
