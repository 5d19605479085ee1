package model

import (
	"errors"
	"fmt"
)

// unimputedError signals a row that still holds a missing value at inference time.
type unimputedError struct {
	row    int
	column string
}

func (e unimputedError) Error() string {
	return fmt.Sprintf("row %d: column %s is missing and could not be imputed", e.row, e.column)
}

// ErrUnimputed constructs an unimputedError.
func ErrUnimputed(row int, column string) error { return unimputedError{row: row, column: column} }

// IsUnimputed reports whether err indicates a missing value reached inference.
func IsUnimputed(err error) bool {
	var ue unimputedError
	return errors.As(err, &ue)
}

// dependencyUnavailableError signals a runtime that is not built in (e.g. onnxruntime)
// so the HTTP layer can return 503 Service Unavailable instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var de dependencyUnavailableError
	return errors.As(err, &de)
}

// invalidArtifactError reports a manifest that fails validation.
type invalidArtifactError struct{ msg string }

func (e invalidArtifactError) Error() string { return "invalid model artifact: " + e.msg }

func invalidf(format string, a ...any) error {
	return invalidArtifactError{msg: fmt.Sprintf(format, a...)}
}

// IsInvalidArtifact reports whether err was caused by a malformed artifact.
func IsInvalidArtifact(err error) bool {
	var ie invalidArtifactError
	return errors.As(err, &ie)
}
