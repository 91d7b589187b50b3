package password

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls which plaintext passwords are accepted at registration.
// Zero values disable the corresponding check.
type Policy struct {
	MinLength int
	MaxLength int
	// RejectVeryWeak enables a minimal deny list of trivial passwords.
	RejectVeryWeak bool
}

// Config is the single configuration surface for this package.
// Its Hash and Verify methods make it the account service's password hasher.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns the baseline hasher settings for account credentials.
// The policy is empty so every password is accepted; deployments tighten it via env.
func DefaultConfig() Config {
	// Parallelism follows the host but is clamped to [1..4] for containers.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above.
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

// FromEnv loads config from environment variables on top of DefaultConfig.
//
// Env surface:
//   - ACCOUNTD_PASSWORD_MIN_LEN (0 disables)
//   - ACCOUNTD_PASSWORD_MAX_LEN (0 disables)
//   - ACCOUNTD_PASSWORD_REJECT_VERY_WEAK (true/false)
//   - ACCOUNTD_ARGON2_MEMORY_KIB
//   - ACCOUNTD_ARGON2_ITERATIONS
//   - ACCOUNTD_ARGON2_PARALLELISM
//   - ACCOUNTD_ARGON2_SALT_LEN
//   - ACCOUNTD_ARGON2_KEY_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	ints := []struct {
		key      string
		min, max int
		dst      *int
	}{
		{"ACCOUNTD_PASSWORD_MIN_LEN", 0, 1024, &cfg.Policy.MinLength},
		{"ACCOUNTD_PASSWORD_MAX_LEN", 0, 4096, &cfg.Policy.MaxLength},
	}
	for _, it := range ints {
		v, ok := os.LookupEnv(it.key)
		if !ok {
			continue
		}
		n, err := atoiInRange(v, it.min, it.max)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", it.key, err)
		}
		*it.dst = n
	}

	if v, ok := os.LookupEnv("ACCOUNTD_PASSWORD_REJECT_VERY_WEAK"); ok {
		b, err := parseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("ACCOUNTD_PASSWORD_REJECT_VERY_WEAK: %w", err)
		}
		cfg.Policy.RejectVeryWeak = b
	}

	u32s := []struct {
		key      string
		min, max uint32
		dst      *uint32
	}{
		{"ACCOUNTD_ARGON2_MEMORY_KIB", 8 * 1024, 1024 * 1024, &cfg.Params.MemoryKiB}, // 8 MiB .. 1 GiB
		{"ACCOUNTD_ARGON2_ITERATIONS", 1, 20, &cfg.Params.Iterations},
		{"ACCOUNTD_ARGON2_SALT_LEN", 8, 64, &cfg.Params.SaltLength},
		{"ACCOUNTD_ARGON2_KEY_LEN", 16, 64, &cfg.Params.KeyLength},
	}
	for _, it := range u32s {
		v, ok := os.LookupEnv(it.key)
		if !ok {
			continue
		}
		u, err := atou32(v, it.min, it.max)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", it.key, err)
		}
		*it.dst = u
	}

	if v, ok := os.LookupEnv("ACCOUNTD_ARGON2_PARALLELISM"); ok {
		u, err := atou32(v, 1, 64)
		if err != nil {
			return Config{}, fmt.Errorf("ACCOUNTD_ARGON2_PARALLELISM: %w", err)
		}
		p, err := u32ToU8(u)
		if err != nil {
			return Config{}, fmt.Errorf("ACCOUNTD_ARGON2_PARALLELISM: %w", err)
		}
		cfg.Params.Parallelism = p
	}

	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Check reports whether the config can hash and verify safely.
func (c Config) Check() error {
	p := c.Params
	switch {
	case p.MemoryKiB < 8*1024:
		return fmt.Errorf("%w: memory_kib(%d) below 8192", ErrInvalidConfig, p.MemoryKiB)
	case p.Iterations == 0:
		return fmt.Errorf("%w: iterations must be positive", ErrInvalidConfig)
	case p.Parallelism == 0:
		return fmt.Errorf("%w: parallelism must be positive", ErrInvalidConfig)
	case p.SaltLength < 8 || p.SaltLength > 64:
		return fmt.Errorf("%w: salt_len(%d) out of range [8..64]", ErrInvalidConfig, p.SaltLength)
	case p.KeyLength < 16 || p.KeyLength > 64:
		return fmt.Errorf("%w: key_len(%d) out of range [16..64]", ErrInvalidConfig, p.KeyLength)
	case c.Policy.MinLength < 0 || c.Policy.MaxLength < 0:
		return fmt.Errorf("%w: negative length bound", ErrInvalidConfig)
	case c.Policy.MaxLength > 0 && c.Policy.MinLength > c.Policy.MaxLength:
		return fmt.Errorf("%w: min_len(%d) > max_len(%d)", ErrInvalidConfig, c.Policy.MinLength, c.Policy.MaxLength)
	}
	return nil
}

func atoiInRange(s string, minVal, maxVal int) (int, error) {
	i64, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	i := int(i64)
	if i < minVal || i > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return i, nil
}

func atou32(s string, minVal, maxVal uint32) (uint32, error) {
	u64, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return u, nil
}

func u32ToU8(u uint32) (uint8, error) {
	if u > math.MaxUint8 {
		return 0, fmt.Errorf("out of range [0..%d]", math.MaxUint8)
	}
	return uint8(u), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean")
	}
}
