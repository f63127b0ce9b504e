package kafka

import (
	"context"
	"errors"
	"testing"

	kafka_config "agenda/pkg/kafka/config"
	"agenda/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("staff-1").
		WithEventType("booking.admitted").
		WithValue(map[string]string{"booking_id": "b-1"}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return msg
}

func TestNewProducer_RequiresBrokersAndTopic(t *testing.T) {
	if _, err := NewProducer(&kafka_config.Config{}, "t", "", logger.Discard()); err == nil {
		t.Errorf("expected error without brokers")
	}
	if _, err := NewProducer(&kafka_config.Config{Brokers: []string{"b:9092"}}, "", "", logger.Discard()); err == nil {
		t.Errorf("expected error without topic")
	}
}

func TestPublish_RunsMiddlewareInOrder(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "bookings.events"}

	var order []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		order = append(order, "outer")
		return next(ctx, msg)
	})
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		order = append(order, "inner")
		return next(ctx, msg)
	})

	if err := p.Publish(context.Background(), buildMessage(t)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("middleware order = %v", order)
	}
	if len(w.written) != 1 || string(w.written[0].Key) != "staff-1" {
		t.Fatalf("written = %+v", w.written)
	}
	if header(w.written[0], HeaderEventType) != "booking.admitted" {
		t.Errorf("event type header missing")
	}
	if header(w.written[0], HeaderEventID) == "" {
		t.Errorf("event id header missing")
	}
}

func TestPublish_FailureGoesToDLQ(t *testing.T) {
	writeErr := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := &Producer{writer: &fakeWriter{err: writeErr}, dlqWriter: dlq, topic: "bookings.events"}

	err := p.Publish(context.Background(), buildMessage(t))
	if !errors.Is(err, writeErr) {
		t.Fatalf("error = %v, want original write error", err)
	}
	if len(dlq.written) != 1 {
		t.Fatalf("expected one DLQ message, got %d", len(dlq.written))
	}
	if header(dlq.written[0], HeaderOriginalTopic) != "bookings.events" {
		t.Errorf("original topic header missing")
	}
}

func TestPublish_Rejects(t *testing.T) {
	p := &Producer{writer: &fakeWriter{}, topic: "t"}

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("error = %v, want ErrEmptyKey", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("error = %v, want ErrEmptyValue", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Publish(context.Background(), buildMessage(t)); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("error = %v, want ErrProducerClosed", err)
	}
}

func TestBuild_ReportsEncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Errorf("expected encoding error")
	}
}
