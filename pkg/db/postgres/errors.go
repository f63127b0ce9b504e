package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation    = "23505"
	codeExclusionViolation = "23P01"
	codeInvalidText        = "22P02"
	codeSerialization      = "40001"
	codeDeadlock           = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// IsExclusionViolation reports a violated EXCLUDE constraint, which is how
// overlapping bookings surface when they slip past the row lock.
func IsExclusionViolation(err error) bool {
	return pgCode(err) == codeExclusionViolation
}

// IsInvalidID reports malformed input such as a non-UUID identifier.
func IsInvalidID(err error) bool {
	return pgCode(err) == codeInvalidText
}

// IsUnavailable reports failures that are safe to retry with backoff:
// connection errors, timeouts, serialization failures and deadlocks.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch pgCode(err) {
	case codeSerialization, codeDeadlock:
		return true
	}
	return false
}
