package service

import (
	"context"
	"errors"

	catalogerrors "agenda/internal/catalog/errors"
	"agenda/internal/catalog/repository"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
	"agenda/pkg/model"
)

type CatalogService interface {
	// GetService resolves an active service with a usable duration.
	GetService(ctx context.Context, id string) (*model.Service, error)
	// GetStaff resolves an active staff member.
	GetStaff(ctx context.Context, id string) (*model.StaffMember, error)
	ListServices(ctx context.Context) ([]*model.Service, error)
	ListStaff(ctx context.Context) ([]*model.StaffMember, error)
	Stats(ctx context.Context) (*model.CatalogStats, error)
}

type catalogService struct {
	repo repository.CatalogRepository
	log  *logger.Logger
}

func NewCatalogService(repo repository.CatalogRepository, log *logger.Logger) CatalogService {
	return &catalogService{repo: repo, log: log}
}

func (s *catalogService) GetService(ctx context.Context, id string) (*model.Service, error) {
	svc, err := s.repo.FindService(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.ServiceNotFound(id)
		}
		return nil, s.storeError("Failed to load service", err)
	}
	if !svc.Active {
		return nil, apperrors.ServiceNotFound(id)
	}
	if svc.DurationMin <= 0 {
		s.log.Warn("Service has no valid duration", "service_id", id, "duration_min", svc.DurationMin)
		return nil, apperrors.InvalidRequest("service has no valid duration").
			WithDetails(map[string]any{"service_id": id})
	}
	return svc, nil
}

func (s *catalogService) GetStaff(ctx context.Context, id string) (*model.StaffMember, error) {
	staff, err := s.repo.FindStaff(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.StaffNotFound(id)
		}
		return nil, s.storeError("Failed to load staff member", err)
	}
	if !staff.Active {
		return nil, apperrors.StaffNotFound(id)
	}
	return staff, nil
}

func (s *catalogService) ListServices(ctx context.Context) ([]*model.Service, error) {
	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, s.storeError("Failed to list services", err)
	}
	return services, nil
}

func (s *catalogService) ListStaff(ctx context.Context) ([]*model.StaffMember, error) {
	staff, err := s.repo.ListStaff(ctx)
	if err != nil {
		return nil, s.storeError("Failed to list staff", err)
	}
	return staff, nil
}

func (s *catalogService) Stats(ctx context.Context) (*model.CatalogStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, s.storeError("Failed to read store statistics", err)
	}
	return stats, nil
}

func (s *catalogService) storeError(msg string, err error) error {
	s.log.Error(msg, "error", err)
	if errors.Is(err, catalogerrors.ErrStoreUnavailable) {
		return apperrors.StoreUnavailable(err)
	}
	return apperrors.Internal(msg, err)
}
