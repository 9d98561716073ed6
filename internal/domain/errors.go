package domain

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks data that cannot be served yet, such as input files
// that have not been produced.
var ErrUnavailable = errors.New("data unavailable")

// UpstreamError is a well-formed response from KMA that reports failure, or a
// response that cannot be interpreted.
type UpstreamError struct {
	Op      string
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: upstream: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: upstream: %s", e.Op, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// TransportError is a network failure or timeout talking to KMA.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IOError is a failure reading or writing a persisted table.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError is a cell token that could not be coerced. The cell is null.
type ParseError struct {
	Column string
	Token  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column %s: cannot parse %q", e.Column, e.Token)
}
