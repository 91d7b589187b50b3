package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"accountd/cmd/identity"
	"accountd/cmd/internal/auth/session"
	"accountd/cmd/security/password"
)

// Hasher is the password hashing boundary. password.Config implements it.
type Hasher interface {
	Validate(plaintext string) error
	Hash(plaintext string) (string, error)
	Verify(encodedHash, plaintext string) (bool, error)
}

// Service implements register, authenticate and update.
type Service struct {
	creds    identity.CredentialStore
	profiles identity.ProfileStore
	tracker  session.Tracker
	hasher   Hasher

	log     *slog.Logger
	metrics *Metrics

	dummyOnce sync.Once
	dummyHash string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for operation events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires the service's collaborators. All four are required.
func NewService(creds identity.CredentialStore, profiles identity.ProfileStore, tracker session.Tracker, hasher Hasher, opts ...Option) (*Service, error) {
	if creds == nil || profiles == nil || tracker == nil || hasher == nil {
		return nil, errors.New("account: missing dependency")
	}
	s := &Service{
		creds:    creds,
		profiles: profiles,
		tracker:  tracker,
		hasher:   hasher,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Register creates a user. Logins are opaque and compared byte for byte.
// It does not establish a session.
func (s *Service) Register(ctx context.Context, login, plaintext string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe(OpRegister, start, err) }()

	exists, err := s.creds.Exists(ctx, login)
	if err != nil {
		return fmt.Errorf("account.Register: %w", err)
	}
	if exists {
		s.log.Info("account.register.duplicate", "login", login)
		return ErrDuplicateLogin
	}

	if err := s.hasher.Validate(plaintext); err != nil {
		return PolicyError{Reason: err}
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("account.Register: hash: %w", err)
	}

	// The store's uniqueness constraint decides races that pass the Exists check.
	u, err := s.creds.Create(ctx, login, hash)
	if err != nil {
		if identity.IsConflict(err) {
			s.log.Info("account.register.duplicate", "login", login)
			return ErrDuplicateLogin
		}
		return fmt.Errorf("account.Register: %w", err)
	}

	s.log.Info("account.register.ok", "login", login, "user_id", u.ID)
	return nil
}

// Authenticate verifies credentials and, on success, makes login the current
// session, replacing whoever held it.
func (s *Service) Authenticate(ctx context.Context, login, plaintext string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe(OpAuthenticate, start, err) }()

	u, err := s.creds.Find(ctx, login)
	if err != nil {
		if identity.IsNotFound(err) {
			s.burnVerify(plaintext)
			s.log.Info("account.login.failed", "login", login, "reason", "unknown_login")
			return ErrInvalidCredentials
		}
		return fmt.Errorf("account.Authenticate: %w", err)
	}

	ok, verr := s.hasher.Verify(u.PasswordHash, plaintext)
	if verr != nil {
		s.log.Warn("account.login.bad_hash", "login", login, "err", verr)
	}
	if !ok {
		s.log.Info("account.login.failed", "login", login, "reason", "bad_password")
		return ErrInvalidCredentials
	}

	if err := s.tracker.SetCurrent(ctx, login); err != nil {
		return fmt.Errorf("account.Authenticate: %w", err)
	}
	s.metrics.sessionSwitched()

	s.log.Info("account.login.ok", "login", login, "user_id", u.ID)
	return nil
}

// Update merges patch into the details of the current session's user.
func (s *Service) Update(ctx context.Context, patch ProfilePatch) error {
	_, err := s.UpdateCurrent(ctx, patch)
	return err
}

// UpdateCurrent is Update that also reports which login the patch was applied
// to. The login is read once, so it names the user actually changed even if
// another Authenticate replaces the session concurrently.
func (s *Service) UpdateCurrent(ctx context.Context, patch ProfilePatch) (login string, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(OpUpdate, start, err) }()

	login, ok, err := s.tracker.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("account.Update: %w", err)
	}
	if !ok {
		s.log.Info("account.update.unauthorized")
		return "", ErrUnauthorized
	}

	if _, err := s.creds.Find(ctx, login); err != nil {
		if identity.IsNotFound(err) {
			return login, ErrUserNotFound
		}
		return login, fmt.Errorf("account.Update: %w", err)
	}

	if _, err := s.profiles.Merge(ctx, login, patch.Details()); err != nil {
		if identity.IsNotFound(err) {
			return login, ErrUserNotFound
		}
		return login, fmt.Errorf("account.Update: %w", err)
	}

	s.log.Info("account.update.ok", "login", login)
	return login, nil
}

// CurrentLogin returns the login holding the global session, if any.
func (s *Service) CurrentLogin(ctx context.Context) (string, bool, error) {
	return s.tracker.Current(ctx)
}

// burnVerify runs a verification against a throwaway hash so unknown logins
// cost about as much as wrong passwords.
func (s *Service) burnVerify(plaintext string) {
	s.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		h, err := s.hasher.Hash(hex.EncodeToString(buf))
		if err != nil {
			s.log.Warn("account.dummy_hash_failed", "err", err)
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash == "" {
		return
	}
	_, _ = s.hasher.Verify(s.dummyHash, plaintext)
}

var _ Hasher = password.Config{}
