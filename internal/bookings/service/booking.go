package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "agenda/internal/bookings/errors"
	"agenda/internal/bookings/events"
	"agenda/internal/bookings/repository"
	"agenda/internal/bookings/validator"
	catalogservice "agenda/internal/catalog/service"
	clientservice "agenda/internal/clients/service"
	"agenda/internal/scheduling"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
	"agenda/pkg/metrics"
	"agenda/pkg/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("agenda/internal/bookings")

type BookingService interface {
	Availability(ctx context.Context, q *model.AvailabilityQuery) (*model.Availability, error)
	Admit(ctx context.Context, req *model.AdmissionRequest) (*model.AdmissionResponse, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// ListForStaffDay returns every booking of the staff member on date,
	// released ones included.
	ListForStaffDay(ctx context.Context, staffID, date string) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, update *model.StatusUpdate) error
}

// Options carries the scheduling policy.
type Options struct {
	Hours         scheduling.WorkingHours
	Step          time.Duration
	InitialStatus model.BookingStatus
}

type bookingService struct {
	repo      repository.BookingRepository
	catalog   catalogservice.CatalogService
	clients   clientservice.ClientService
	validator *validator.BookingValidator
	events    *events.Dispatcher
	metrics   *metrics.BookingMetrics
	opts      Options
	log       *logger.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	catalog catalogservice.CatalogService,
	clients clientservice.ClientService,
	validator *validator.BookingValidator,
	dispatcher *events.Dispatcher,
	metrics *metrics.BookingMetrics,
	opts Options,
	log *logger.Logger,
) BookingService {
	if dispatcher == nil {
		dispatcher = events.NewDispatcher(nil, 0, log)
	}
	return &bookingService{
		repo:      repo,
		catalog:   catalog,
		clients:   clients,
		validator: validator,
		events:    dispatcher,
		metrics:   metrics,
		opts:      opts,
		log:       log,
	}
}

func (s *bookingService) Availability(ctx context.Context, q *model.AvailabilityQuery) (*model.Availability, error) {
	ctx, span := tracer.Start(ctx, "bookings.Availability", trace.WithAttributes(
		attribute.String("service_id", q.ServiceID),
		attribute.String("staff_id", q.StaffID),
		attribute.String("date", q.Date),
	))
	defer span.End()
	started := time.Now()
	log := logger.FromContext(ctx, s.log)

	if err := s.validator.ValidateAvailabilityQuery(q); err != nil {
		log.Warn("Availability query validation failed", "error", err)
		return nil, fail(span, validationError("Invalid availability query", err))
	}
	day, err := scheduling.ParseDay(q.Date)
	if err != nil {
		return nil, fail(span, apperrors.InvalidRequest("date must be in YYYY-MM-DD format"))
	}

	svc, err := s.catalog.GetService(ctx, q.ServiceID)
	if err != nil {
		return nil, fail(span, err)
	}
	if _, err := s.catalog.GetStaff(ctx, q.StaffID); err != nil {
		return nil, fail(span, err)
	}

	booked, err := s.repo.FindBookings(ctx, q.StaffID, day, day.AddDate(0, 0, 1), model.ReleasedStatuses)
	if err != nil {
		log.Error("Failed to load bookings for availability", "staff_id", q.StaffID, "date", q.Date, "error", err)
		return nil, fail(span, storeError("Failed to load bookings", err))
	}

	windowStart, windowEnd := s.opts.Hours.Window(day)
	slots := scheduling.FreeSlots(windowStart, windowEnd, svc.Duration(), s.opts.Step, scheduling.BusyIntervals(booked))

	s.metrics.ObserveAvailability(time.Since(started).Seconds(), len(slots))
	span.SetAttributes(attribute.Int("slots", len(slots)))
	log.Debug("Availability computed",
		"service_id", q.ServiceID,
		"staff_id", q.StaffID,
		"date", q.Date,
		"booked", len(booked),
		"slots", len(slots),
	)

	return &model.Availability{
		Date:        q.Date,
		ServiceID:   q.ServiceID,
		StaffID:     q.StaffID,
		DurationMin: svc.DurationMin,
		Slots:       slots,
	}, nil
}

func (s *bookingService) Admit(ctx context.Context, req *model.AdmissionRequest) (*model.AdmissionResponse, error) {
	ctx, span := tracer.Start(ctx, "bookings.Admit", trace.WithAttributes(
		attribute.String("service_id", req.ServiceID),
		attribute.String("staff_id", req.StaffID),
	))
	defer span.End()
	log := logger.FromContext(ctx, s.log)

	if err := s.validator.ValidateAdmission(req); err != nil {
		log.Warn("Booking request validation failed", "error", err)
		s.metrics.ObserveAdmission("invalid")
		return nil, fail(span, validationError("Invalid booking request", err))
	}

	svc, err := s.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		s.metrics.ObserveAdmission("rejected")
		return nil, fail(span, err)
	}
	if _, err := s.catalog.GetStaff(ctx, req.StaffID); err != nil {
		s.metrics.ObserveAdmission("rejected")
		return nil, fail(span, err)
	}

	client, err := s.clients.FindOrCreate(ctx, req.ClientName, req.ClientPhone)
	if err != nil {
		s.metrics.ObserveAdmission("rejected")
		return nil, fail(span, err)
	}

	start := req.StartTS.UTC()
	booking := &model.Booking{
		StaffID:   req.StaffID,
		ServiceID: req.ServiceID,
		ClientID:  client.ID,
		StartTS:   start,
		EndTS:     start.Add(svc.Duration()),
		Status:    s.opts.InitialStatus,
	}

	id, err := s.repo.InsertBooking(ctx, booking)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrSlotTaken):
			log.Warn("Booking rejected, slot taken",
				"staff_id", req.StaffID,
				"start_ts", start,
				"end_ts", booking.EndTS,
			)
			s.metrics.ObserveAdmission("slot_taken")
			return nil, fail(span, apperrors.SlotTaken("The selected slot is no longer available"))
		case errors.Is(err, bookingserrors.ErrStaffNotFound):
			s.metrics.ObserveAdmission("rejected")
			return nil, fail(span, apperrors.StaffNotFound(req.StaffID))
		}
		log.Error("Failed to insert booking", "staff_id", req.StaffID, "error", err)
		s.metrics.ObserveAdmission("error")
		return nil, fail(span, storeError("Failed to create booking", err))
	}
	booking.ID = id
	span.SetAttributes(attribute.String("booking_id", id))
	s.metrics.ObserveAdmission("admitted")

	log.Info("Booking admitted",
		"id", id,
		"staff_id", booking.StaffID,
		"service_id", booking.ServiceID,
		"client_id", booking.ClientID,
		"start_ts", booking.StartTS,
		"status", booking.Status,
	)

	s.events.BookingAdmitted(ctx, booking)

	return &model.AdmissionResponse{BookingID: id}, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidRequest("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, id, err)
	}

	return booking, nil
}

func (s *bookingService) ListForStaffDay(ctx context.Context, staffID, date string) ([]*model.Booking, error) {
	if staffID == "" {
		return nil, apperrors.InvalidRequest("staff_id is required")
	}
	day, err := scheduling.ParseDay(date)
	if err != nil {
		return nil, apperrors.InvalidRequest("date must be in YYYY-MM-DD format")
	}

	bookings, err := s.repo.FindBookings(ctx, staffID, day, day.AddDate(0, 0, 1), nil)
	if err != nil {
		logger.FromContext(ctx, s.log).Error("Failed to list bookings", "staff_id", staffID, "date", date, "error", err)
		return nil, storeError("Failed to list bookings", err)
	}

	return bookings, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, update *model.StatusUpdate) error {
	ctx, span := tracer.Start(ctx, "bookings.UpdateStatus", trace.WithAttributes(
		attribute.String("booking_id", id),
		attribute.String("status", string(update.Status)),
	))
	defer span.End()
	log := logger.FromContext(ctx, s.log)

	if id == "" {
		return fail(span, apperrors.InvalidRequest("Booking ID cannot be empty"))
	}
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		log.Warn("Status update validation failed", "id", id, "error", err)
		return fail(span, validationError("Invalid status update", err))
	}

	before, err := s.repo.UpdateStatus(ctx, id, update.Status)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrInvalidTransition):
			msg := "Cannot change booking status to " + string(update.Status)
			if before != nil {
				msg = "Cannot change booking status from " + string(before.Status) + " to " + string(update.Status)
			}
			return fail(span, apperrors.InvalidRequest(msg))
		case errors.Is(err, bookingserrors.ErrSlotTaken):
			log.Warn("Booking re-activation rejected, slot taken", "id", id)
			return fail(span, apperrors.SlotTaken("The booking's slot has been taken by another booking"))
		}
		return fail(span, s.lookupError(ctx, id, err))
	}

	s.metrics.ObserveStatusChange(string(update.Status))
	log.Info("Booking status updated", "id", id, "from", before.Status, "to", update.Status)

	after := *before
	after.Status = update.Status
	s.events.StatusChanged(ctx, &after, before.Status)

	return nil
}

func (s *bookingService) lookupError(ctx context.Context, id string, err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidRequest("Invalid booking ID format")
	}
	logger.FromContext(ctx, s.log).Error("Failed to access booking", "id", id, "error", err)
	return storeError("Failed to access booking", err)
}

func validationError(msg string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(msg, verrs.Details())
	}
	return apperrors.InvalidRequest(msg)
}

func storeError(msg string, err error) error {
	if errors.Is(err, bookingserrors.ErrStoreUnavailable) {
		return apperrors.StoreUnavailable(err)
	}
	return apperrors.Internal(msg, err)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
