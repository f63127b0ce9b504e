package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrSlotTaken = errors.New("booking overlaps an existing booking for this staff member")

	ErrStaffNotFound = errors.New("staff member not found")

	ErrInvalidTransition = errors.New("booking status transition not allowed")

	ErrStoreUnavailable = errors.New("booking store unavailable")
)
