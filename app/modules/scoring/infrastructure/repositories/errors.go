package scoringdb

import "errors"

var (
	// ErrNotFound is returned when a game, snapshot or posting does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoRowsAffected is returned when an update matched nothing.
	ErrNoRowsAffected = errors.New("no rows affected")
)
