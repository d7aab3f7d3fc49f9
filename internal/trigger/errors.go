package trigger

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by ConfigError.
var (
	ErrTooFewFields   = errors.New("expected at least two comma-separated fields")
	ErrUnknownKeyword = errors.New("unknown keyword")
	ErrArity          = errors.New("wrong number of arguments")
	ErrUnresolvedName = errors.New("unresolved name")
	ErrDuplicateName  = errors.New("name already defined")
	ErrEmptyName      = errors.New("empty name")
	ErrNamedAdd       = errors.New("ADD cannot be bound to a name")
	ErrEmptyPhrase    = errors.New("phrase has no words")
	ErrBadDateTime    = errors.New("unparseable date-time")
)

// ConfigError reports a trigger file line that could not be compiled.
type ConfigError struct {
	Line int
	Text string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TimeZoneError reports a date-time without an offset when no default
// location was configured to resolve it.
type TimeZoneError struct {
	Value string
}

func (e *TimeZoneError) Error() string {
	return fmt.Sprintf("date-time %q has no zone offset and no location is configured", e.Value)
}
