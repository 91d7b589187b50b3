package account

import "errors"

var (
	// ErrDuplicateLogin is returned by Register when the login is taken.
	ErrDuplicateLogin = errors.New("user already exists")

	// ErrInvalidCredentials is returned by Authenticate for an unknown login or
	// a wrong password. The two cases are indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned by Update when no session exists.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserNotFound is returned by Update when the session's login has no user record.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPassword is returned by Register when the password fails the hasher's policy.
	ErrInvalidPassword = errors.New("invalid password")
)

// PolicyError wraps a password policy violation so callers can report the reason.
type PolicyError struct {
	Reason error
}

func (e PolicyError) Error() string { return ErrInvalidPassword.Error() + ": " + e.Reason.Error() }

func (e PolicyError) Is(target error) bool { return target == ErrInvalidPassword }

func (e PolicyError) Unwrap() error { return e.Reason }

func isClientError(err error) bool {
	for _, target := range []error{
		ErrDuplicateLogin,
		ErrInvalidCredentials,
		ErrUnauthorized,
		ErrUserNotFound,
		ErrInvalidPassword,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
