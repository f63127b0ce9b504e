// Package mongo implements the catalog, client and booking repositories on
// MongoDB. Admissions for one staff member serialise on that member's
// staff_ledger document: every admitting transaction bumps it first, so two
// concurrent admissions for the same staff member write-conflict and the
// loser is retried after the winner commits.
package mongo

import (
	"context"
	"time"

	migrations "agenda/internal/migrations/mongo"
	mongotx "agenda/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Store struct {
	db        *mongo.Database
	services  *mongo.Collection
	staff     *mongo.Collection
	clients   *mongo.Collection
	bookings  *mongo.Collection
	ledger    *mongo.Collection
	txManager mongotx.TransactionManager
	timeout   time.Duration
	now       func() time.Time
}

func New(db *mongo.Database, timeout time.Duration) *Store {
	return &Store{
		db:        db,
		services:  db.Collection(migrations.ServicesCollection),
		staff:     db.Collection(migrations.StaffCollection),
		clients:   db.Collection(migrations.ClientsCollection),
		bookings:  db.Collection(migrations.BookingsCollection),
		ledger:    db.Collection(migrations.StaffLedgerCollection),
		txManager: mongotx.NewTransactionManager(db.Client()),
		timeout:   timeout,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// withTimeout bounds ctx by the store timeout. Inside a transaction the
// SessionContext is returned unchanged since wrapping it would detach the
// session.
func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < s.timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
