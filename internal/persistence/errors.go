package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrOpenSessionExists is returned when creating an open session while the
	// employee already has one. It is the storage-level guard behind the
	// single-open-session invariant.
	ErrOpenSessionExists = errors.New("persistence: open session already exists")
	// ErrNoOpenSession is returned when closing a session for an employee who
	// has none open.
	ErrNoOpenSession = errors.New("persistence: no open session")
	// ErrConstraintViolation is returned when a record fails an integrity check.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrUnavailable is returned when the backing store cannot be reached.
	// Operations failing with it left no partial state behind and are safe to
	// retry.
	ErrUnavailable = errors.New("persistence: store unavailable")
)
