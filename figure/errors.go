package figure

import (
	"errors"
	"fmt"
)

// ErrPlotNotFound indicates an unknown plot handle.
var ErrPlotNotFound = errors.New("plot not found")

// ErrStyle indicates an invalid plot style or domain.
var ErrStyle = errors.New("invalid plot style")

// VariablesError reports a binding with the wrong number of positional
// variables for the plot kind.
type VariablesError struct {
	Kind string
	Want int
	Got  []string
}

func (e *VariablesError) Error() string {
	return fmt.Sprintf("%s plot takes %d positional variable(s), got %v", e.Kind, e.Want, e.Got)
}
