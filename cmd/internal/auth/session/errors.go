package session

import "errors"

var (
	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")

	// ErrBackendUnavailable wraps failures to reach the tracker's backing store.
	ErrBackendUnavailable = errors.New("session backend unavailable")
)
