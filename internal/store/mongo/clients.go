package mongo

import (
	"context"
	"errors"
	"fmt"

	clientserrors "agenda/internal/clients/errors"
	mongotx "agenda/pkg/db/mongo"
	"agenda/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func clientError(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return clientserrors.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return clientserrors.ErrDuplicatePhone
	case mongotx.IsUnavailable(err):
		return fmt.Errorf("%w: %s: %w", clientserrors.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *Store) FindByPhone(ctx context.Context, phone string) (*model.Client, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var c model.Client
	if err := s.clients.FindOne(ctx, bson.M{"phone": phone}).Decode(&c); err != nil {
		return nil, clientError("find client by phone", err)
	}
	return &c, nil
}

func (s *Store) Create(ctx context.Context, c *model.Client) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc := *c
	doc.ID = uuid.NewString()
	doc.CreatedAt = s.now()
	if _, err := s.clients.InsertOne(ctx, doc); err != nil {
		return "", clientError("create client", err)
	}
	return doc.ID, nil
}
