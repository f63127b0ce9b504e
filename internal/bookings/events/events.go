package events

import (
	"context"
	"fmt"
	"time"

	"agenda/pkg/kafka"
	"agenda/pkg/logger"
	"agenda/pkg/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	EventBookingAdmitted      = "booking.admitted"
	EventBookingStatusChanged = "booking.status_changed"

	schemaVersion = "1"
)

// BookingEvent is the payload published for every committed booking change.
type BookingEvent struct {
	BookingID      string              `json:"booking_id"`
	StaffID        string              `json:"staff_id"`
	ServiceID      string              `json:"service_id"`
	ClientID       string              `json:"client_id"`
	StartTS        time.Time           `json:"start_ts"`
	EndTS          time.Time           `json:"end_ts"`
	Status         model.BookingStatus `json:"status"`
	PreviousStatus model.BookingStatus `json:"previous_status,omitempty"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// Publisher announces committed booking changes. Publishing happens after the
// store commit, so a failure never undoes the change.
type Publisher interface {
	BookingAdmitted(ctx context.Context, booking *model.Booking) error
	StatusChanged(ctx context.Context, booking *model.Booking, previous model.BookingStatus) error
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer producer
	source   string
}

func NewKafkaPublisher(p producer, source string) Publisher {
	return &kafkaPublisher{producer: p, source: source}
}

func (p *kafkaPublisher) BookingAdmitted(ctx context.Context, booking *model.Booking) error {
	return p.publish(ctx, EventBookingAdmitted, newEvent(booking, ""))
}

func (p *kafkaPublisher) StatusChanged(ctx context.Context, booking *model.Booking, previous model.BookingStatus) error {
	return p.publish(ctx, EventBookingStatusChanged, newEvent(booking, previous))
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, event BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.StaffID).
		WithValue(event).
		WithEventType(eventType).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(msg.Headers))

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

func newEvent(b *model.Booking, previous model.BookingStatus) BookingEvent {
	return BookingEvent{
		BookingID:      b.ID,
		StaffID:        b.StaffID,
		ServiceID:      b.ServiceID,
		ClientID:       b.ClientID,
		StartTS:        b.StartTS,
		EndTS:          b.EndTS,
		Status:         b.Status,
		PreviousStatus: previous,
		OccurredAt:     time.Now().UTC(),
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) BookingAdmitted(context.Context, *model.Booking) error { return nil }

func (noopPublisher) StatusChanged(context.Context, *model.Booking, model.BookingStatus) error {
	return nil
}
