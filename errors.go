package docbolt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStorageUnavailable is wrapped by every OpenError, so callers can
// match any physical open failure with errors.Is.
var ErrStorageUnavailable = errors.New("storage unavailable")

// SchemaError reports a collection schema that cannot be compiled into
// a physical index declaration. It is detected before anything is
// opened and is never retried.
type SchemaError struct {
	Field string
	Msg   string
}

func schemaErrf(field string, format string, args ...any) error {
	return &SchemaError{field, fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Error() string {
	var buf strings.Builder
	buf.WriteString("schema")
	if e.Field != "" {
		buf.WriteByte('.')
		buf.WriteString(e.Field)
	}
	buf.WriteString(": ")
	buf.WriteString(e.Msg)
	return buf.String()
}

// OpenError reports a failed physical open of the handle named Name.
// Every acquirer waiting on the same creation attempt receives the
// same OpenError.
type OpenError struct {
	Name string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Name, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

func (e *OpenError) Is(target error) bool {
	return target == ErrStorageUnavailable
}
