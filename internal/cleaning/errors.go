package cleaning

import (
	"errors"
	"fmt"
)

var (
	// ErrDateParse matches any *DateParseError via errors.Is.
	ErrDateParse = errors.New("date parse error")
	// ErrMissingColumn reports a required column absent from the input.
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidValue reports a numeric cell that is not an integer.
	ErrInvalidValue = errors.New("invalid value")
)

// DateParseError describes a date cell that does not match the expected layout.
type DateParseError struct {
	Column string
	Row    int // 1-based data row
	Value  string
	Layout string
	Err    error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parse %s at row %d: %q does not match %q", e.Column, e.Row, e.Value, e.Layout)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDateParse) match.
func (e *DateParseError) Is(target error) bool { return target == ErrDateParse }
