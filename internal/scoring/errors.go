package scoring

import (
	"errors"
	"fmt"
)

// filterError reports a row filter that does not compile or does not yield a bool.
type filterError struct{ msg string }

func (e filterError) Error() string { return "row filter: " + e.msg }

func filterErrorf(format string, a ...any) error {
	return filterError{msg: fmt.Sprintf(format, a...)}
}

// IsFilterError reports whether err came from a bad row filter expression.
func IsFilterError(err error) bool {
	var fe filterError
	return errors.As(err, &fe)
}

// csvError reports unreadable or malformed CSV input.
type csvError struct{ err error }

func (e csvError) Error() string { return "csv: " + e.err.Error() }
func (e csvError) Unwrap() error { return e.err }

// IsCSVError reports whether err was caused by malformed CSV input.
func IsCSVError(err error) bool {
	var ce csvError
	return errors.As(err, &ce)
}
