package app

import (
	"fmt"

	"accountd/cmd/security/password"
)

// ValidateSecurityConfig loads the password hasher settings and fails fast on
// anything invalid instead of falling back to defaults.
func ValidateSecurityConfig() (password.Config, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return password.Config{}, fmt.Errorf("security policy: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return password.Config{}, fmt.Errorf("security policy: %w", err)
	}
	return cfg, nil
}
