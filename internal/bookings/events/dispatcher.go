package events

import (
	"context"
	"sync"
	"time"

	"agenda/pkg/logger"
	"agenda/pkg/model"
)

const DefaultPublishTimeout = 5 * time.Second

// Dispatcher hands committed booking changes to a Publisher in the
// background. The request that made the change returns without waiting for
// the broker; each publish keeps the caller's values (request id, trace) but
// not its cancellation, and is bounded by its own timeout.
type Dispatcher struct {
	next    Publisher
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(next Publisher, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if next == nil {
		next = NewNoopPublisher()
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Dispatcher{next: next, timeout: timeout, log: log}
}

func (d *Dispatcher) BookingAdmitted(ctx context.Context, booking *model.Booking) {
	b := *booking
	d.dispatch(ctx, EventBookingAdmitted, b.ID, func(ctx context.Context) error {
		return d.next.BookingAdmitted(ctx, &b)
	})
}

func (d *Dispatcher) StatusChanged(ctx context.Context, booking *model.Booking, previous model.BookingStatus) {
	b := *booking
	d.dispatch(ctx, EventBookingStatusChanged, b.ID, func(ctx context.Context) error {
		return d.next.StatusChanged(ctx, &b, previous)
	})
}

// Wait blocks until every dispatched publish has finished. Call it before
// closing the producer.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, eventType, bookingID string, publish func(context.Context) error) {
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()

		if err := publish(ctx); err != nil {
			logger.FromContext(ctx, d.log).Error("Failed to publish booking event",
				"event", eventType,
				"booking_id", bookingID,
				"error", err,
			)
		}
	}()
}
