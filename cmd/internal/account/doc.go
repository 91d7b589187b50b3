// Package account orchestrates accountd's three operations: register,
// authenticate and update.
//
// Service composes a credential store, a profile store, a session tracker and a
// password hasher. It owns the mapping from storage and hashing errors to the
// small set of sentinels the transport layer understands.
//
// The session is global. Authenticate overwrites it, and Update always applies
// to whichever login authenticated most recently, regardless of caller.
package account
