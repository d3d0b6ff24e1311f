package ports

import "errors"

// ErrNotFound is returned by adapters when the addressed record does not exist.
var ErrNotFound = errors.New("record not found")
