package errors

import "errors"

var (
	ErrNotFound = errors.New("catalog entry not found")

	ErrStoreUnavailable = errors.New("catalog store unavailable")
)
