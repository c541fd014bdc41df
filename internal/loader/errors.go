package loader

import "fmt"

// ParseError reports a cell that could not be converted to its typed value
type ParseError struct {
	Source string // "cgm" or "insulin"
	Line   int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d: parsing %s %q: %v", e.Source, e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError reports a required column that is absent or has no values
type SchemaError struct {
	Source string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: column %q %s", e.Source, e.Field, e.Reason)
}
