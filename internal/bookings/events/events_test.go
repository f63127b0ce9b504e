package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"agenda/pkg/kafka"
	"agenda/pkg/logger"
	"agenda/pkg/model"
)

type recordingProducer struct {
	msgs []kafka.Message
	err  error
}

func (p *recordingProducer) Publish(ctx context.Context, msg kafka.Message) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func sampleBooking() *model.Booking {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	return &model.Booking{
		ID:        "b-1",
		StaffID:   "st-1",
		ServiceID: "s-1",
		ClientID:  "c-1",
		StartTS:   start,
		EndTS:     start.Add(30 * time.Minute),
		Status:    model.StatusCancelled,
	}
}

func TestKafkaPublisher_StatusChanged(t *testing.T) {
	p := &recordingProducer{}
	pub := NewKafkaPublisher(p, "bookings")
	ctx := logger.ContextWithRequestID(context.Background(), "req-1")

	if err := pub.StatusChanged(ctx, sampleBooking(), model.StatusConfirmed); err != nil {
		t.Fatalf("StatusChanged: %v", err)
	}
	if len(p.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(p.msgs))
	}

	msg := p.msgs[0]
	if msg.Key != "st-1" {
		t.Errorf("key = %s, want staff id", msg.Key)
	}
	if msg.EventType() != EventBookingStatusChanged {
		t.Errorf("event type = %s", msg.EventType())
	}
	if msg.CorrelationID() != "req-1" {
		t.Errorf("correlation id = %s", msg.CorrelationID())
	}

	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Status != model.StatusCancelled || event.PreviousStatus != model.StatusConfirmed {
		t.Errorf("event = %+v", event)
	}
}

func TestKafkaPublisher_WrapsProducerError(t *testing.T) {
	wantErr := errors.New("broker down")
	pub := NewKafkaPublisher(&recordingProducer{err: wantErr}, "bookings")

	err := pub.BookingAdmitted(context.Background(), sampleBooking())
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped producer error", err)
	}
}

func TestNoopPublisher(t *testing.T) {
	pub := NewNoopPublisher()
	if err := pub.BookingAdmitted(context.Background(), sampleBooking()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
