package repository

import "errors"

// ErrNotFound is returned by any repository lookup that matches no record.
var ErrNotFound = errors.New("not found")
