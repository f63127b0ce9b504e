package postgres

import (
	"context"
	"errors"
	"fmt"

	clientserrors "agenda/internal/clients/errors"
	pgdb "agenda/pkg/db/postgres"
	"agenda/pkg/model"

	"github.com/jackc/pgx/v5"
)

func clientError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return clientserrors.ErrNotFound
	case pgdb.IsUniqueViolation(err):
		return clientserrors.ErrDuplicatePhone
	case pgdb.IsUnavailable(err):
		return fmt.Errorf("%w: %s: %w", clientserrors.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *Store) FindByPhone(ctx context.Context, phone string) (*model.Client, error) {
	var c model.Client
	err := pgdb.Conn(ctx, s.db).QueryRow(ctx,
		`SELECT id::text, name, phone, created_at FROM clients WHERE phone = $1`, phone,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt)
	if err != nil {
		return nil, clientError("find client by phone", err)
	}
	return &c, nil
}

func (s *Store) Create(ctx context.Context, c *model.Client) (string, error) {
	var id string
	err := pgdb.Conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO clients (name, phone) VALUES ($1, NULLIF($2, '')) RETURNING id::text`,
		c.Name, c.Phone,
	).Scan(&id)
	if err != nil {
		return "", clientError("create client", err)
	}
	return id, nil
}
