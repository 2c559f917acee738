package models

import "errors"

var (
	// ErrUserNotFound is returned when no account matches the requested id.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserConflict is returned when an update collides with another
	// account's username or email.
	ErrUserConflict = errors.New("username or email already taken")
)
