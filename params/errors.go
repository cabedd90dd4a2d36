package params

import (
	"errors"
	"fmt"
)

// ErrRange indicates an update that would break min <= value, default_value <= max.
var ErrRange = errors.New("parameter out of range")

// ErrNotFound indicates an unknown parameter name.
var ErrNotFound = errors.New("parameter not found")

// ErrInUse indicates a parameter that cannot be removed while something references it.
var ErrInUse = errors.New("parameter in use")

// RangeError reports a rejected update. The parameter keeps its prior state.
type RangeError struct {
	Name     string
	Proposed Values
	Reason   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Name, e.Reason)
}

func (e *RangeError) Unwrap() error { return ErrRange }

// UnknownFieldError reports a field name outside Fields().
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown parameter field %q (recognized: %v)", e.Name, fields)
}
