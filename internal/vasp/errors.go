package vasp

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when a file ends before all declared
// k-points and bands have been read.
var ErrTruncated = errors.New("unexpected end of file")

// ErrIndexOutOfRange is returned by Projection.Lookup.
var ErrIndexOutOfRange = errors.New("index out of range")

// ParseError describes a malformed input line.
type ParseError struct {
	File string // file name, empty when reading from a stream
	Line int    // 1-based line number, 0 if not tied to a line
	Msg  string
	Err  error // underlying cause (optional)
}

func (e *ParseError) Error() string {
	loc := e.File
	if loc == "" {
		loc = "<input>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// withFile stamps the file name onto a *ParseError, leaving other errors
// untouched.
func withFile(err error, file string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.File == "" {
		pe.File = file
	}
	return err
}
