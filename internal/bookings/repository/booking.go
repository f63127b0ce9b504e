package repository

import (
	"context"
	"time"

	"agenda/pkg/model"
)

// BookingRepository is the booking record store. Implementations live in
// internal/store. Every method that creates or re-activates a booking checks
// for overlap and writes in one atomic unit per staff member.
type BookingRepository interface {
	// FindBookings returns the staff member's bookings intersecting
	// [from, to), ordered by start, skipping the excluded statuses.
	FindBookings(ctx context.Context, staffID string, from, to time.Time, exclude []model.BookingStatus) ([]*model.Booking, error)

	FindOverlapping(ctx context.Context, staffID string, start, end time.Time, exclude []model.BookingStatus) ([]*model.Booking, error)

	// InsertBooking assigns an id and stores the booking unless it overlaps a
	// blocking booking of the same staff member, in which case it returns
	// errors.ErrSlotTaken.
	InsertBooking(ctx context.Context, booking *model.Booking) (string, error)

	FindByID(ctx context.Context, id string) (*model.Booking, error)

	// UpdateStatus moves a booking to next and returns the booking as it was
	// before the change. A disallowed move returns the current booking along
	// with errors.ErrInvalidTransition. Moving a released booking back to a
	// blocking status re-checks overlap like InsertBooking.
	UpdateStatus(ctx context.Context, id string, next model.BookingStatus) (*model.Booking, error)
}
