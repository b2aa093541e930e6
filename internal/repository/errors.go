package repository

import "errors"

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// ErrEmailExists is returned when an account with the same email is already stored.
var ErrEmailExists = errors.New("email already exists")
