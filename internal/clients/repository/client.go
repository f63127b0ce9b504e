package repository

import (
	"context"

	"agenda/pkg/model"
)

type ClientRepository interface {
	// FindByPhone looks a client up by E.164 phone.
	FindByPhone(ctx context.Context, phone string) (*model.Client, error)
	// Create assigns an id and stores the client. A phone already on file
	// yields errors.ErrDuplicatePhone.
	Create(ctx context.Context, client *model.Client) (string, error)
}
