package ihex

import (
	"errors"
	"fmt"
)

// ErrTooLarge indicates an image with more blocks than the protocol can address.
var ErrTooLarge = errors.New("image exceeds 65535 blocks")

// LoadError indicates that a firmware file cannot be opened or read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load firmware: %v", e.Err)
	}
	return fmt.Sprintf("load firmware %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ParseError indicates a line that is not a valid Intel-HEX record.
type ParseError struct {
	// Path is the file being parsed, empty for readers
	Path string

	// Line is the 1-based line number
	Line int

	// Reason describes the problem
	Reason string

	// Err is the underlying error, if any
	Err error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return "parse firmware: " + msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
