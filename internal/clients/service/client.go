package service

import (
	"context"
	"errors"

	clientserrors "agenda/internal/clients/errors"
	"agenda/internal/clients/repository"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
	"agenda/pkg/model"
	"agenda/pkg/sanitizer"
)

type ClientService interface {
	// FindOrCreate resolves the client owning phone, creating one when the
	// phone is unknown. An empty phone always creates a new client.
	FindOrCreate(ctx context.Context, name, phone string) (*model.Client, error)
}

type clientService struct {
	repo          repository.ClientRepository
	defaultRegion string
	log           *logger.Logger
}

func NewClientService(repo repository.ClientRepository, defaultRegion string, log *logger.Logger) ClientService {
	return &clientService{
		repo:          repo,
		defaultRegion: defaultRegion,
		log:           log,
	}
}

func (s *clientService) FindOrCreate(ctx context.Context, name, phone string) (*model.Client, error) {
	name = sanitizer.NormalizeName(name)
	if name == "" {
		return nil, apperrors.InvalidRequest("client_name is required")
	}

	var normalized string
	if phone != "" {
		normalized = sanitizer.NormalizePhone(phone, s.defaultRegion)
		if normalized == "" {
			return nil, apperrors.InvalidRequest("client_phone is not a valid phone number")
		}

		existing, err := s.repo.FindByPhone(ctx, normalized)
		switch {
		case err == nil:
			return existing, nil
		case !errors.Is(err, clientserrors.ErrNotFound):
			return nil, s.storeError("Failed to look up client", err)
		}
	}

	c := &model.Client{Name: name, Phone: normalized}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		// a concurrent request registered the same phone first
		if errors.Is(err, clientserrors.ErrDuplicatePhone) {
			existing, findErr := s.repo.FindByPhone(ctx, normalized)
			if findErr != nil {
				return nil, s.storeError("Failed to look up client", findErr)
			}
			return existing, nil
		}
		return nil, s.storeError("Failed to create client", err)
	}
	c.ID = id

	s.log.Info("Client created", "client_id", id, "has_phone", normalized != "")
	return c, nil
}

func (s *clientService) storeError(msg string, err error) error {
	s.log.Error(msg, "error", err)
	if errors.Is(err, clientserrors.ErrStoreUnavailable) {
		return apperrors.StoreUnavailable(err)
	}
	return apperrors.Internal(msg, err)
}
