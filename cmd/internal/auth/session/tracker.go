package session

import "context"

// Tracker holds the single, global "current login".
//
// Implementations must be safe for concurrent use. SetCurrent is unconditional:
// concurrent calls race and whichever lands last is what Current returns.
type Tracker interface {
	// SetCurrent replaces the current login, creating the slot on first use.
	SetCurrent(ctx context.Context, login string) error

	// Current returns the current login. ok is false if nobody has authenticated yet.
	Current(ctx context.Context) (login string, ok bool, err error)
}
