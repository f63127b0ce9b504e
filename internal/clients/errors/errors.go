package errors

import "errors"

var (
	ErrNotFound = errors.New("client not found")

	ErrDuplicatePhone = errors.New("client with this phone already exists")

	ErrStoreUnavailable = errors.New("client store unavailable")
)
