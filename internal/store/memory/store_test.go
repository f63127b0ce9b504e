package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	bookingserrors "agenda/internal/bookings/errors"
	catalogerrors "agenda/internal/catalog/errors"
	clientserrors "agenda/internal/clients/errors"
	"agenda/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

func seeded() *Store {
	s := New()
	s.Seed(
		[]model.Service{
			{ID: "s-cut", Name: "Cut", Category: "hair", DurationMin: 30, Active: true},
			{ID: "s-beard", Name: "Beard", Category: "barber", DurationMin: 20, Active: true},
			{ID: "s-old", Name: "Perm", Category: "hair", DurationMin: 60, Active: false},
		},
		[]model.StaffMember{
			{ID: "st-1", Name: "Noa", Active: true},
			{ID: "st-2", Name: "Avi", Active: true},
		},
	)
	return s
}

func booking(staffID string, start time.Time, minutes int) *model.Booking {
	return &model.Booking{
		StaffID:   staffID,
		ServiceID: "s-cut",
		ClientID:  "c-1",
		StartTS:   start,
		EndTS:     start.Add(time.Duration(minutes) * time.Minute),
		Status:    model.StatusConfirmed,
	}
}

func TestCatalog(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	services, err := s.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "barber", services[0].Category)

	staff, err := s.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "Avi", staff[0].Name)

	_, err = s.FindService(ctx, "missing")
	assert.ErrorIs(t, err, catalogerrors.ErrNotFound)
}

func TestInsertBooking_RejectsOverlapAllowsBackToBack(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	id, err := s.InsertBooking(ctx, booking("st-1", at(10, 0), 30))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = s.InsertBooking(ctx, booking("st-1", at(10, 15), 30))
	assert.ErrorIs(t, err, bookingserrors.ErrSlotTaken)

	_, err = s.InsertBooking(ctx, booking("st-1", at(10, 30), 30))
	assert.NoError(t, err)

	_, err = s.InsertBooking(ctx, booking("st-2", at(10, 0), 30))
	assert.NoError(t, err, "other staff members do not conflict")

	_, err = s.InsertBooking(ctx, booking("st-404", at(10, 0), 30))
	assert.ErrorIs(t, err, bookingserrors.ErrStaffNotFound)
}

func TestInsertBooking_ConcurrentSameSlotOneWinner(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	const attempts = 50
	var wins, taken atomic.Int32
	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.InsertBooking(ctx, booking("st-1", at(14, 0), 30))
			switch err {
			case nil:
				wins.Add(1)
			case bookingserrors.ErrSlotTaken:
				taken.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(attempts-1), taken.Load())
}

func TestFindBookings_ExcludesReleased(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	id, err := s.InsertBooking(ctx, booking("st-1", at(9, 0), 30))
	require.NoError(t, err)
	_, err = s.InsertBooking(ctx, booking("st-1", at(11, 0), 30))
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, id, model.StatusCancelled)
	require.NoError(t, err)

	all, err := s.FindBookings(ctx, "st-1", at(0, 0), at(23, 59), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.True(t, all[0].StartTS.Before(all[1].StartTS))

	active, err := s.FindBookings(ctx, "st-1", at(0, 0), at(23, 59), model.ReleasedStatuses)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, at(11, 0), active[0].StartTS)
}

func TestUpdateStatus_ReactivationRechecksOverlap(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	first, err := s.InsertBooking(ctx, booking("st-1", at(10, 0), 30))
	require.NoError(t, err)

	before, err := s.UpdateStatus(ctx, first, model.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, before.Status)

	_, err = s.InsertBooking(ctx, booking("st-1", at(10, 0), 30))
	require.NoError(t, err, "cancelled booking releases its slot")

	_, err = s.UpdateStatus(ctx, first, model.StatusConfirmed)
	assert.ErrorIs(t, err, bookingserrors.ErrSlotTaken)

	current, err := s.FindByID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, current.Status)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	id, err := s.InsertBooking(ctx, booking("st-1", at(10, 0), 30))
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, id, model.StatusCompleted)
	require.NoError(t, err)

	before, err := s.UpdateStatus(ctx, id, model.StatusCancelled)
	assert.ErrorIs(t, err, bookingserrors.ErrInvalidTransition)
	assert.Equal(t, model.StatusCompleted, before.Status)
}

func TestFindByID(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	_, err := s.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, bookingserrors.ErrInvalidID)

	_, err = s.FindByID(ctx, "7a0c6f4e-3f57-4d5e-9d1c-7c1f3b2f9a10")
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
}

func TestClients(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.Create(ctx, &model.Client{Name: "Dana", Phone: "+972541234567"})
	require.NoError(t, err)

	_, err = s.Create(ctx, &model.Client{Name: "Dana again", Phone: "+972541234567"})
	assert.ErrorIs(t, err, clientserrors.ErrDuplicatePhone)

	found, err := s.FindByPhone(ctx, "+972541234567")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)

	_, err = s.Create(ctx, &model.Client{Name: "Walk-in"})
	assert.NoError(t, err)
	_, err = s.Create(ctx, &model.Client{Name: "Walk-in 2"})
	assert.NoError(t, err, "clients without a phone never collide")
}

func TestStats(t *testing.T) {
	s := seeded()
	_, err := s.InsertBooking(context.Background(), booking("st-1", at(10, 0), 30))
	require.NoError(t, err)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Services)
	assert.Equal(t, int64(2), stats.Staff)
	assert.Equal(t, int64(1), stats.Bookings)
}
