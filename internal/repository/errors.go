package repository

import "errors"

// ErrNotFound is returned when a looked-up entity does not exist.
// Postgres implementations map pgx.ErrNoRows onto it.
var ErrNotFound = errors.New("not found")
