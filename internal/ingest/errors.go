package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrNoValidRows is returned when validation drops every row of an upload
	ErrNoValidRows = errors.New("no valid records found")
)

// ParseError reports an unrecoverable decode failure of the whole input
// stream. Per-cell problems never produce a ParseError; they surface as
// absent fields instead.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s input: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
