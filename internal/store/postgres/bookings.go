package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "agenda/internal/bookings/errors"
	pgdb "agenda/pkg/db/postgres"
	"agenda/pkg/model"

	"github.com/jackc/pgx/v5"
)

const (
	bookingColumns = `id::text, staff_id::text, service_id::text, client_id::text, start_ts, end_ts, status, created_at`

	// Intervals are half-open: [start_ts, end_ts).
	selectOverlappingSQL = `SELECT ` + bookingColumns + ` FROM bookings
		WHERE staff_id = $1::uuid AND start_ts < $3 AND end_ts > $2 AND status <> ALL($4::text[])
		ORDER BY start_ts`

	lockStaffSQL = `SELECT id::text FROM staff WHERE id = $1::uuid FOR UPDATE`

	overlapExistsSQL = `SELECT EXISTS (SELECT 1 FROM bookings
		WHERE staff_id = $1::uuid AND start_ts < $3 AND end_ts > $2 AND status <> ALL($4::text[]) AND id <> $5::uuid)`

	insertBookingSQL = `INSERT INTO bookings (staff_id, service_id, client_id, start_ts, end_ts, status)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6)
		RETURNING id::text, created_at`

	lockBookingSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1::uuid FOR UPDATE`

	updateStatusSQL = `UPDATE bookings SET status = $2 WHERE id = $1::uuid`
)

// nilUUID never matches a stored booking, so overlapExistsSQL skips nothing
// on insert.
const nilUUID = "00000000-0000-0000-0000-000000000000"

func statusStrings(statuses []model.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func releasedStatuses() []string {
	return statusStrings(model.ReleasedStatuses)
}

func bookingError(op string, err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrSlotTaken),
		errors.Is(err, bookingserrors.ErrStaffNotFound),
		errors.Is(err, bookingserrors.ErrNotFound),
		errors.Is(err, bookingserrors.ErrInvalidID),
		errors.Is(err, bookingserrors.ErrInvalidTransition):
		return err
	case pgdb.IsExclusionViolation(err):
		return bookingserrors.ErrSlotTaken
	case pgdb.IsUnavailable(err):
		return fmt.Errorf("%w: %s: %w", bookingserrors.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		b      model.Booking
		status string
	)
	if err := row.Scan(&b.ID, &b.StaffID, &b.ServiceID, &b.ClientID, &b.StartTS, &b.EndTS, &status, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	b.StartTS, b.EndTS, b.CreatedAt = b.StartTS.UTC(), b.EndTS.UTC(), b.CreatedAt.UTC()
	return &b, nil
}

func (s *Store) FindBookings(ctx context.Context, staffID string, from, to time.Time, exclude []model.BookingStatus) ([]*model.Booking, error) {
	return s.FindOverlapping(ctx, staffID, from, to, exclude)
}

func (s *Store) FindOverlapping(ctx context.Context, staffID string, start, end time.Time, exclude []model.BookingStatus) ([]*model.Booking, error) {
	rows, err := pgdb.Conn(ctx, s.db).Query(ctx, selectOverlappingSQL, staffID, start, end, statusStrings(exclude))
	if err != nil {
		if pgdb.IsInvalidID(err) {
			return []*model.Booking{}, nil
		}
		return nil, bookingError("find overlapping bookings", err)
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, bookingError("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		if pgdb.IsInvalidID(err) {
			return []*model.Booking{}, nil
		}
		return nil, bookingError("find overlapping bookings", err)
	}
	return bookings, nil
}

// lockStaff takes the per-staff admission lock for the rest of the
// transaction.
func lockStaff(ctx context.Context, q pgdb.Querier, staffID string) error {
	var id string
	err := q.QueryRow(ctx, lockStaffSQL, staffID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) || pgdb.IsInvalidID(err) {
		return bookingserrors.ErrStaffNotFound
	}
	return err
}

func overlapExists(ctx context.Context, q pgdb.Querier, b *model.Booking, skipID string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, overlapExistsSQL, b.StaffID, b.StartTS, b.EndTS, releasedStatuses(), skipID).Scan(&exists)
	return exists, err
}

func (s *Store) InsertBooking(ctx context.Context, booking *model.Booking) (string, error) {
	var id string
	err := pgdb.WithTx(ctx, s.db, func(ctx context.Context) error {
		q := pgdb.Conn(ctx, s.db)

		if err := lockStaff(ctx, q, booking.StaffID); err != nil {
			return err
		}

		taken, err := overlapExists(ctx, q, booking, nilUUID)
		if err != nil {
			return err
		}
		if taken {
			return bookingserrors.ErrSlotTaken
		}

		return q.QueryRow(ctx, insertBookingSQL,
			booking.StaffID, booking.ServiceID, booking.ClientID,
			booking.StartTS, booking.EndTS, string(booking.Status),
		).Scan(&id, &booking.CreatedAt)
	})
	if err != nil {
		return "", bookingError("insert booking", err)
	}
	return id, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBooking(pgdb.Conn(ctx, s.db).QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1::uuid`, id))
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, bookingserrors.ErrNotFound
	case pgdb.IsInvalidID(err):
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	default:
		return nil, bookingError("find booking", err)
	}
}

func (s *Store) UpdateStatus(ctx context.Context, id string, next model.BookingStatus) (*model.Booking, error) {
	var before *model.Booking
	err := pgdb.WithTx(ctx, s.db, func(ctx context.Context) error {
		q := pgdb.Conn(ctx, s.db)

		current, err := scanBooking(q.QueryRow(ctx, lockBookingSQL, id))
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return bookingserrors.ErrNotFound
		case pgdb.IsInvalidID(err):
			return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
		case err != nil:
			return err
		}
		before = current

		if !current.Status.CanTransitionTo(next) {
			return bookingserrors.ErrInvalidTransition
		}

		if next.Blocking() && !current.Status.Blocking() {
			if err := lockStaff(ctx, q, current.StaffID); err != nil {
				return err
			}
			taken, err := overlapExists(ctx, q, current, current.ID)
			if err != nil {
				return err
			}
			if taken {
				return bookingserrors.ErrSlotTaken
			}
		}

		_, err = q.Exec(ctx, updateStatusSQL, id, string(next))
		return err
	})
	if err != nil {
		return before, bookingError("update booking status", err)
	}
	return before, nil
}
