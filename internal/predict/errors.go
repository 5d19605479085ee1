package predict

import "errors"

// storeDisabledError is returned by queries that need the prediction log when
// no store is configured; the HTTP layer maps it to 503.
type storeDisabledError struct{}

func (storeDisabledError) Error() string { return "prediction store is not enabled" }

// ErrStoreDisabled is the sentinel store-disabled error.
var ErrStoreDisabled error = storeDisabledError{}

// IsStoreDisabled reports whether err indicates the store is not configured.
func IsStoreDisabled(err error) bool {
	var se storeDisabledError
	return errors.As(err, &se)
}
