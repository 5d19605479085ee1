package features

import (
	"errors"
	"fmt"
)

// ErrNoRows is returned when a request carries no rows to align.
var ErrNoRows = errors.New("no rows to predict")

// valueError signals a feature value that cannot be read as a number.
type valueError struct {
	row    int
	column string
	value  any
}

func (e valueError) Error() string {
	return fmt.Sprintf("row %d: column %s: value %v is not numeric", e.row, e.column, e.value)
}

// IsValueError reports whether err was caused by a non-numeric feature value.
func IsValueError(err error) bool {
	var ve valueError
	return errors.As(err, &ve)
}

// IsNoRows reports whether err indicates an empty batch.
func IsNoRows(err error) bool { return errors.Is(err, ErrNoRows) }
