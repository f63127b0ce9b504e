package model

import "time"

// Slot is a candidate interval. It is derived per request and never stored.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Availability struct {
	Date        string `json:"date"`
	ServiceID   string `json:"service_id"`
	StaffID     string `json:"staff_id"`
	DurationMin int    `json:"duration_min"`
	Slots       []Slot `json:"slots"`
}

// AvailabilityQuery carries the query string of GET /api/availability.
type AvailabilityQuery struct {
	ServiceID string `json:"service_id" validate:"required,max=64"`
	StaffID   string `json:"staff_id" validate:"required,max=64"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}
