package binding

import (
	"errors"
	"fmt"
)

// ErrConflict indicates a name claimed by more than one slot.
var ErrConflict = errors.New("binding conflict")

// ErrGap indicates integer keys that are not contiguous from 0.
var ErrGap = errors.New("binding gap")

// ErrEmptyName indicates a slot with no name.
var ErrEmptyName = errors.New("binding name is empty")

// ConflictError reports the name and the two claims on it.
type ConflictError struct {
	Name   string
	First  string // e.g. "position 0"
	Second string // e.g. `key "x"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("binding conflict: %q claimed by %s and %s", e.Name, e.First, e.Second)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// GapError reports the first missing integer position.
type GapError struct {
	Missing int
	Keys    []int
}

func (e *GapError) Error() string {
	return fmt.Sprintf("binding gap: integer keys %v are missing position %d", e.Keys, e.Missing)
}

func (e *GapError) Unwrap() error { return ErrGap }
