// Package sanitizer rewrites audio filename references in fwdata lines so
// that every referenced filename is plain ASCII.
package sanitizer

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of sanitization error.
type ErrorType string

const (
	// InvalidInput indicates an empty filename was passed in.
	InvalidInput ErrorType = "INVALID_INPUT"
	// TransliterationFailure indicates Han text could not be romanized.
	// It is never returned from ConvertAudioFileName; it is reported
	// through the warning callback and the name is passed through.
	TransliterationFailure ErrorType = "TRANSLITERATION_FAILURE"
)

// Error represents an error that occurred while sanitizing a filename.
type Error struct {
	Type ErrorType
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %q (%v)", e.Type, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %q", e.Type, e.Name)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsInvalidInput reports whether err is an INVALID_INPUT sanitization error.
func IsInvalidInput(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == InvalidInput
}
