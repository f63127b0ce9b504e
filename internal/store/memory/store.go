// Package memory keeps the whole catalog and booking ledger in process
// memory. Admissions for one staff member are serialised by a per-staff
// mutex; different staff members never contend.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	bookingserrors "agenda/internal/bookings/errors"
	catalogerrors "agenda/internal/catalog/errors"
	clientserrors "agenda/internal/clients/errors"
	"agenda/internal/scheduling"
	"agenda/pkg/model"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	services map[string]model.Service
	staff    map[string]model.StaffMember
	clients  map[string]model.Client
	phones   map[string]string
	bookings map[string]model.Booking

	staffLocks sync.Map // staff id -> *sync.Mutex

	now func() time.Time
}

func New() *Store {
	return &Store{
		services: make(map[string]model.Service),
		staff:    make(map[string]model.StaffMember),
		clients:  make(map[string]model.Client),
		phones:   make(map[string]string),
		bookings: make(map[string]model.Booking),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Seed adds catalog entries, replacing any with the same id.
func (s *Store) Seed(services []model.Service, staff []model.StaffMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, svc := range services {
		s.services[svc.ID] = svc
	}
	for _, st := range staff {
		s.staff[st.ID] = st
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) staffLock(staffID string) *sync.Mutex {
	l, _ := s.staffLocks.LoadOrStore(staffID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// catalog

func (s *Store) FindService(ctx context.Context, id string) (*model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return nil, catalogerrors.ErrNotFound
	}
	return &svc, nil
}

func (s *Store) FindStaff(ctx context.Context, id string) (*model.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.staff[id]
	if !ok {
		return nil, catalogerrors.ErrNotFound
	}
	return &st, nil
}

func (s *Store) ListServices(ctx context.Context) ([]*model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Service, 0, len(s.services))
	for _, svc := range s.services {
		if svc.Active {
			out = append(out, &svc)
		}
	}
	slices.SortFunc(out, func(a, b *model.Service) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Name, b.Name))
	})
	return out, nil
}

func (s *Store) ListStaff(ctx context.Context) ([]*model.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.StaffMember, 0, len(s.staff))
	for _, st := range s.staff {
		if st.Active {
			out = append(out, &st)
		}
	}
	slices.SortFunc(out, func(a, b *model.StaffMember) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) Stats(ctx context.Context) (*model.CatalogStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &model.CatalogStats{
		Now:      s.now(),
		Services: int64(len(s.services)),
		Staff:    int64(len(s.staff)),
		Bookings: int64(len(s.bookings)),
	}, nil
}

// clients

func (s *Store) FindByPhone(ctx context.Context, phone string) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.phones[phone]
	if !ok {
		return nil, clientserrors.ErrNotFound
	}
	c := s.clients[id]
	return &c, nil
}

func (s *Store) Create(ctx context.Context, c *model.Client) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Phone != "" {
		if _, taken := s.phones[c.Phone]; taken {
			return "", clientserrors.ErrDuplicatePhone
		}
	}
	stored := *c
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now()
	s.clients[stored.ID] = stored
	if stored.Phone != "" {
		s.phones[stored.Phone] = stored.ID
	}
	return stored.ID, nil
}

// bookings

func (s *Store) FindBookings(ctx context.Context, staffID string, from, to time.Time, exclude []model.BookingStatus) ([]*model.Booking, error) {
	return s.FindOverlapping(ctx, staffID, from, to, exclude)
}

func (s *Store) FindOverlapping(ctx context.Context, staffID string, start, end time.Time, exclude []model.BookingStatus) ([]*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", bookingserrors.ErrStoreUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlapping(staffID, start, end, exclude, ""), nil
}

// overlapping must be called with s.mu held.
func (s *Store) overlapping(staffID string, start, end time.Time, exclude []model.BookingStatus, skipID string) []*model.Booking {
	out := make([]*model.Booking, 0)
	for _, b := range s.bookings {
		if b.StaffID != staffID || b.ID == skipID || slices.Contains(exclude, b.Status) {
			continue
		}
		if scheduling.Overlaps(start, end, b.StartTS, b.EndTS) {
			out = append(out, &b)
		}
	}
	slices.SortFunc(out, func(a, b *model.Booking) int {
		return a.StartTS.Compare(b.StartTS)
	})
	return out
}

func (s *Store) InsertBooking(ctx context.Context, booking *model.Booking) (string, error) {
	lock := s.staffLock(booking.StaffID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", bookingserrors.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staff[booking.StaffID]; !ok {
		return "", bookingserrors.ErrStaffNotFound
	}
	if len(s.overlapping(booking.StaffID, booking.StartTS, booking.EndTS, model.ReleasedStatuses, "")) > 0 {
		return "", bookingserrors.ErrSlotTaken
	}

	stored := *booking
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now()
	s.bookings[stored.ID] = stored
	booking.CreatedAt = stored.CreatedAt
	return stored.ID, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return &b, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, next model.BookingStatus) (*model.Booking, error) {
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lock := s.staffLock(current.StaffID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bookings[id]
	before := b
	if !b.Status.CanTransitionTo(next) {
		return &before, bookingserrors.ErrInvalidTransition
	}
	if next.Blocking() && !b.Status.Blocking() {
		if len(s.overlapping(b.StaffID, b.StartTS, b.EndTS, model.ReleasedStatuses, b.ID)) > 0 {
			return &before, bookingserrors.ErrSlotTaken
		}
	}
	b.Status = next
	s.bookings[id] = b
	return &before, nil
}
