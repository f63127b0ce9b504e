package model

import "time"

type Service struct {
	ID          string  `json:"id" bson:"_id"`
	Name        string  `json:"name" bson:"name"`
	Category    string  `json:"category" bson:"category"`
	DurationMin int     `json:"duration_min" bson:"duration_min"`
	Price       float64 `json:"price" bson:"price"`
	Active      bool    `json:"active" bson:"active"`
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

type StaffMember struct {
	ID     string `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Role   string `json:"role" bson:"role,omitempty"`
	Active bool   `json:"active" bson:"active"`
}

// StaffFields lists the staff attributes every store exposes.
var StaffFields = []string{"id", "name", "role", "active"}

// StaffDebug is the staff diagnostic: the exposed fields and at most one
// sample record.
type StaffDebug struct {
	OK     bool           `json:"ok"`
	Fields []string       `json:"fields"`
	Sample []*StaffMember `json:"sample"`
}

type CatalogStats struct {
	Now      time.Time `json:"now"`
	Services int64     `json:"services"`
	Staff    int64     `json:"staff"`
	Bookings int64     `json:"bookings"`
}
