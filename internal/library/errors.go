package library

import "errors"

var (
	// ErrNotFound indicates the requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrConstraint indicates a foreign key or check constraint violation.
	ErrConstraint = errors.New("constraint violation")

	// ErrManualMatch indicates an automatic link was refused because the file
	// was matched by hand.
	ErrManualMatch = errors.New("file is manually matched")
)

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func isDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }
