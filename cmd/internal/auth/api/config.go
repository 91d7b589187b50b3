package authapi

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrConfig is returned when auth API env configuration is invalid.
var ErrConfig = errors.New("authapi: invalid config")

// Config controls auth API request handling.
type Config struct {
	// TrustProxy makes audit rows take the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
}

// DefaultConfig returns the defaults used when no env overrides are present.
func DefaultConfig() Config {
	return Config{MaxBodyBytes: 1 << 20} // 1 MiB
}

// LoadConfigFromEnv loads auth config from environment variables.
//
// Optional:
//   - ACCOUNTD_AUTH_TRUST_PROXY (bool)
//   - ACCOUNTD_AUTH_MAX_BODY_BYTES (positive integer)
//
// Unset or blank keys keep their defaults. A value that does not parse returns
// ErrConfig rather than being silently replaced.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("ACCOUNTD_AUTH_TRUST_PROXY")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: ACCOUNTD_AUTH_TRUST_PROXY=%q", ErrConfig, v)
		}
		cfg.TrustProxy = b
	}

	if v := strings.TrimSpace(os.Getenv("ACCOUNTD_AUTH_MAX_BODY_BYTES")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%w: ACCOUNTD_AUTH_MAX_BODY_BYTES=%q", ErrConfig, v)
		}
		cfg.MaxBodyBytes = n
	}

	return cfg, nil
}
