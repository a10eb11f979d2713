package function

import (
	"errors"
	"fmt"
)

// ErrContextConsumed is returned when a RenderContext is rendered twice.
var ErrContextConsumed = errors.New("render context already consumed")

// ArityError is returned when a function is rendered with the wrong number of arguments.
type ArityError struct {
	Function string
	Got      int
	Want     string
	Context  string // the call as it was handed to the renderer
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("arity error: function %s expects %s argument(s), got %d in %s",
		e.Function, e.Want, e.Got, e.Context)
}

// UnknownFunctionError is returned when no tier of the registry knows a function.
type UnknownFunctionError struct {
	Name    string
	Dialect string
}

func (e *UnknownFunctionError) Error() string {
	if e.Dialect == "" {
		return fmt.Sprintf("unknown function %s", e.Name)
	}
	return fmt.Sprintf("unknown function %s for dialect %s", e.Name, e.Dialect)
}

// ConfigurationError is returned when a function cannot be rendered for a dialect
// at all, independent of its arguments.
type ConfigurationError struct {
	Function string
	Dialect  string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Dialect == "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Function, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s on %s: %s", e.Function, e.Dialect, e.Reason)
}
