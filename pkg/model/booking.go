package model

import (
	"time"
)

type BookingStatus string

const (
	StatusHold       BookingStatus = "hold"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusReady      BookingStatus = "ready"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// ReleasedStatuses do not occupy the staff member's time.
var ReleasedStatuses = []BookingStatus{StatusCancelled, StatusNoShow}

var allStatuses = map[BookingStatus]bool{
	StatusHold:       true,
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusReady:      true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusNoShow:     true,
}

func (s BookingStatus) Valid() bool {
	return allStatuses[s]
}

// Blocking reports whether a booking in this status holds its interval.
func (s BookingStatus) Blocking() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// forward lists the statuses each status may advance to, besides the
// releasing ones which are always allowed.
var forward = map[BookingStatus][]BookingStatus{
	StatusHold:       {StatusConfirmed},
	StatusConfirmed:  {StatusInProgress, StatusReady, StatusCompleted},
	StatusInProgress: {StatusReady, StatusCompleted},
	StatusReady:      {StatusCompleted},
	StatusCancelled:  {StatusHold, StatusConfirmed},
	StatusNoShow:     {StatusHold, StatusConfirmed},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if !next.Valid() || s == next {
		return false
	}
	if s == StatusCompleted {
		return false
	}
	if !next.Blocking() {
		return s.Blocking()
	}
	for _, allowed := range forward[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID        string        `json:"id" bson:"_id"`
	StaffID   string        `json:"staff_id" bson:"staff_id"`
	ServiceID string        `json:"service_id" bson:"service_id"`
	ClientID  string        `json:"client_id" bson:"client_id"`
	StartTS   time.Time     `json:"start_ts" bson:"start_ts"`
	EndTS     time.Time     `json:"end_ts" bson:"end_ts"`
	Status    BookingStatus `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

// AdmissionRequest is the body of POST /api/bookings.
type AdmissionRequest struct {
	ClientName  string    `json:"client_name" validate:"required,min=1,max=120"`
	ClientPhone string    `json:"client_phone,omitempty" validate:"omitempty,max=32"`
	ServiceID   string    `json:"service_id" validate:"required,max=64"`
	StaffID     string    `json:"staff_id" validate:"required,max=64"`
	StartTS     time.Time `json:"start_ts" validate:"required"`
}

type AdmissionResponse struct {
	BookingID string `json:"booking_id"`
}

type StatusUpdate struct {
	Status BookingStatus `json:"status" validate:"required,booking_status"`
}
