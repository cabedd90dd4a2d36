package sym

import (
	"errors"
	"fmt"
)

// ErrUnbound indicates a symbol with no value in the evaluation environment.
var ErrUnbound = errors.New("unbound symbol")

// ErrUndefinedFunction indicates an application of a function with no implementation.
var ErrUndefinedFunction = errors.New("undefined function")

// ArityError reports a known function called with the wrong number of arguments.
type ArityError struct {
	Name string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("function %s takes %d argument(s), got %d", e.Name, e.Want, e.Got)
}

// ParseError reports infix text that could not be turned into an expression.
type ParseError struct {
	Src string
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %q: %s: %v", e.Src, e.Msg, e.Err)
	}
	return fmt.Sprintf("parse %q: %s", e.Src, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }
