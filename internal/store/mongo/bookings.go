package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "agenda/internal/bookings/errors"
	mongotx "agenda/pkg/db/mongo"
	"agenda/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func bookingError(op string, err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrSlotTaken),
		errors.Is(err, bookingserrors.ErrStaffNotFound),
		errors.Is(err, bookingserrors.ErrNotFound),
		errors.Is(err, bookingserrors.ErrInvalidID),
		errors.Is(err, bookingserrors.ErrInvalidTransition):
		return err
	case mongotx.IsUnavailable(err):
		return fmt.Errorf("%w: %s: %w", bookingserrors.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func statusStrings(statuses []model.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// overlapFilter matches bookings of staffID whose half-open interval
// intersects [start, end).
func overlapFilter(staffID string, start, end time.Time, exclude []model.BookingStatus) bson.M {
	return bson.M{
		"staff_id": staffID,
		"start_ts": bson.M{"$lt": end},
		"end_ts":   bson.M{"$gt": start},
		"status":   bson.M{"$nin": statusStrings(exclude)},
	}
}

func (s *Store) FindBookings(ctx context.Context, staffID string, from, to time.Time, exclude []model.BookingStatus) ([]*model.Booking, error) {
	return s.FindOverlapping(ctx, staffID, from, to, exclude)
}

func (s *Store) FindOverlapping(ctx context.Context, staffID string, start, end time.Time, exclude []model.BookingStatus) ([]*model.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_ts", Value: 1}})
	cursor, err := s.bookings.Find(ctx, overlapFilter(staffID, start, end, exclude), opts)
	if err != nil {
		return nil, bookingError("find overlapping bookings", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, bookingError("decode bookings", err)
	}
	for _, b := range bookings {
		normalize(b)
	}
	return bookings, nil
}

func normalize(b *model.Booking) {
	b.StartTS, b.EndTS, b.CreatedAt = b.StartTS.UTC(), b.EndTS.UTC(), b.CreatedAt.UTC()
}

// claimStaff bumps the staff member's ledger document inside the current
// transaction. Any other transaction doing the same for this staff member
// write-conflicts until this one ends.
func (s *Store) claimStaff(sc mongo.SessionContext, staffID string) error {
	_, err := s.ledger.UpdateOne(sc,
		bson.M{"_id": staffID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *Store) overlapTaken(sc mongo.SessionContext, b *model.Booking, skipID string) (bool, error) {
	filter := overlapFilter(b.StaffID, b.StartTS, b.EndTS, model.ReleasedStatuses)
	if skipID != "" {
		filter["_id"] = bson.M{"$ne": skipID}
	}
	n, err := s.bookings.CountDocuments(sc, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *Store) InsertBooking(ctx context.Context, booking *model.Booking) (string, error) {
	doc := *booking
	doc.ID = uuid.NewString()
	doc.CreatedAt = s.now()

	err := s.txManager.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := s.staff.FindOne(sc, bson.M{"_id": doc.StaffID}).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return bookingserrors.ErrStaffNotFound
			}
			return err
		}

		if err := s.claimStaff(sc, doc.StaffID); err != nil {
			return err
		}

		taken, err := s.overlapTaken(sc, &doc, "")
		if err != nil {
			return err
		}
		if taken {
			return bookingserrors.ErrSlotTaken
		}

		_, err = s.bookings.InsertOne(sc, doc)
		return err
	})
	if err != nil {
		return "", bookingError("insert booking", err)
	}

	booking.CreatedAt = doc.CreatedAt
	return doc.ID, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var b model.Booking
	if err := s.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, bookingError("find booking", err)
	}
	normalize(&b)
	return &b, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, next model.BookingStatus) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var before *model.Booking
	err := s.txManager.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		before = nil

		var current model.Booking
		if err := s.bookings.FindOne(sc, bson.M{"_id": id}).Decode(&current); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return bookingserrors.ErrNotFound
			}
			return err
		}
		normalize(&current)
		before = &current

		if !current.Status.CanTransitionTo(next) {
			return bookingserrors.ErrInvalidTransition
		}

		if next.Blocking() && !current.Status.Blocking() {
			if err := s.claimStaff(sc, current.StaffID); err != nil {
				return err
			}
			taken, err := s.overlapTaken(sc, &current, current.ID)
			if err != nil {
				return err
			}
			if taken {
				return bookingserrors.ErrSlotTaken
			}
		}

		// Matching on the old status turns a concurrent change into a
		// write conflict rather than a lost update.
		_, err := s.bookings.UpdateOne(sc,
			bson.M{"_id": id, "status": string(current.Status)},
			bson.M{"$set": bson.M{"status": string(next)}},
		)
		return err
	})
	if err != nil {
		return before, bookingError("update booking status", err)
	}
	return before, nil
}
