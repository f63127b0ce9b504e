package repository

import (
	"context"

	"agenda/pkg/model"
)

type CatalogRepository interface {
	FindService(ctx context.Context, id string) (*model.Service, error)
	FindStaff(ctx context.Context, id string) (*model.StaffMember, error)
	// ListServices returns active services ordered by category, then name.
	ListServices(ctx context.Context) ([]*model.Service, error)
	// ListStaff returns active staff ordered by name.
	ListStaff(ctx context.Context) ([]*model.StaffMember, error)
	Stats(ctx context.Context) (*model.CatalogStats, error)
}
