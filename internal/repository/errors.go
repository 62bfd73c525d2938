package repository

import "errors"

// Sentinel errors surfaced by repositories. Callers match them with
// errors.Is and translate them into their own error taxonomy.
var (
	// ErrNotFound wraps pgx.ErrNoRows for single-row lookups.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks a unique-constraint violation on insert.
	ErrDuplicate = errors.New("already exists")
)
