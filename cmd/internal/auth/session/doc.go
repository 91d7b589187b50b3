// Package session tracks accountd's current session.
//
// There is exactly one session for the whole process: a single slot holding the
// login that most recently authenticated. SetCurrent overwrites it in place and
// the last writer wins. There is no logout and no per-client scoping; every
// caller observes the same value.
//
// Three Tracker backends are provided and behave identically: a Postgres row
// (id = 1), an in-process variable, and a single Redis key.
package session
