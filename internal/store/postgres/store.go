// Package postgres implements the catalog, client and booking repositories
// on PostgreSQL. Admission serialises per staff member by locking the staff
// row, and the bookings table carries an exclusion constraint so that two
// blocking bookings of one staff member can never overlap even if the lock
// is bypassed.
package postgres

import (
	"context"

	pgdb "agenda/pkg/db/postgres"
)

type Store struct {
	db pgdb.DB
}

func New(db pgdb.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
