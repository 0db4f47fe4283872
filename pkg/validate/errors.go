package validate

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStatement is returned when the input contains no SQL statement.
	ErrEmptyStatement = errors.New("empty statement")

	// ErrMultiStatement is returned when the input contains more than one
	// statement. The validator gates exactly one statement per call.
	ErrMultiStatement = errors.New("multiple statements are not allowed")
)

// SchemaUnavailableError indicates the schema catalog could not be built
// from the live store. It is fatal for validator construction: no partial
// catalog is ever produced.
type SchemaUnavailableError struct {
	Err error
}

func (e *SchemaUnavailableError) Error() string {
	return fmt.Sprintf("schema unavailable: %v", e.Err)
}

func (e *SchemaUnavailableError) Unwrap() error {
	return e.Err
}
