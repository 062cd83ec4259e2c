package repository

import "errors"

// ErrNotFound is returned by every repository when the requested row does
// not exist.
var ErrNotFound = errors.New("not found")
