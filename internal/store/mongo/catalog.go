package mongo

import (
	"context"
	"errors"
	"fmt"

	catalogerrors "agenda/internal/catalog/errors"
	mongotx "agenda/pkg/db/mongo"
	"agenda/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func catalogError(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return catalogerrors.ErrNotFound
	case mongotx.IsUnavailable(err):
		return fmt.Errorf("%w: %s: %w", catalogerrors.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *Store) FindService(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var svc model.Service
	if err := s.services.FindOne(ctx, bson.M{"_id": id}).Decode(&svc); err != nil {
		return nil, catalogError("find service", err)
	}
	return &svc, nil
}

func (s *Store) FindStaff(ctx context.Context, id string) (*model.StaffMember, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var st model.StaffMember
	if err := s.staff.FindOne(ctx, bson.M{"_id": id}).Decode(&st); err != nil {
		return nil, catalogError("find staff", err)
	}
	return &st, nil
}

func (s *Store) ListServices(ctx context.Context) ([]*model.Service, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := s.services.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, catalogError("list services", err)
	}
	defer cursor.Close(ctx)

	services := make([]*model.Service, 0)
	if err := cursor.All(ctx, &services); err != nil {
		return nil, catalogError("decode services", err)
	}
	return services, nil
}

func (s *Store) ListStaff(ctx context.Context) ([]*model.StaffMember, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.staff.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, catalogError("list staff", err)
	}
	defer cursor.Close(ctx)

	staff := make([]*model.StaffMember, 0)
	if err := cursor.All(ctx, &staff); err != nil {
		return nil, catalogError("decode staff", err)
	}
	return staff, nil
}

func (s *Store) Stats(ctx context.Context) (*model.CatalogStats, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stats := &model.CatalogStats{Now: s.now()}
	counts := []struct {
		coll *mongo.Collection
		into *int64
	}{
		{s.services, &stats.Services},
		{s.staff, &stats.Staff},
		{s.bookings, &stats.Bookings},
	}
	for _, c := range counts {
		n, err := c.coll.EstimatedDocumentCount(ctx)
		if err != nil {
			return nil, catalogError("count "+c.coll.Name(), err)
		}
		*c.into = n
	}
	return stats, nil
}
