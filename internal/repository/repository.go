// Package repository provides data access interfaces and implementations
package repository

import "errors"

// ErrNotFound is returned when an update or lookup targets a row that
// does not exist. Callers use it to fall back from a live ticket to its
// tombstone copy.
var ErrNotFound = errors.New("repository: record not found")
