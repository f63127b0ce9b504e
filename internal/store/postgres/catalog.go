package postgres

import (
	"context"
	"errors"
	"fmt"

	catalogerrors "agenda/internal/catalog/errors"
	pgdb "agenda/pkg/db/postgres"
	"agenda/pkg/model"

	"github.com/jackc/pgx/v5"
)

const (
	serviceColumns = `id::text, name, category, duration_min, price::float8, active`
	staffColumns   = `id::text, name, role, active`
)

func catalogError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows), pgdb.IsInvalidID(err):
		return catalogerrors.ErrNotFound
	case pgdb.IsUnavailable(err):
		return fmt.Errorf("%w: %s: %w", catalogerrors.ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func scanService(row pgx.Row) (*model.Service, error) {
	var svc model.Service
	if err := row.Scan(&svc.ID, &svc.Name, &svc.Category, &svc.DurationMin, &svc.Price, &svc.Active); err != nil {
		return nil, err
	}
	return &svc, nil
}

func scanStaff(row pgx.Row) (*model.StaffMember, error) {
	var st model.StaffMember
	if err := row.Scan(&st.ID, &st.Name, &st.Role, &st.Active); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) FindService(ctx context.Context, id string) (*model.Service, error) {
	row := pgdb.Conn(ctx, s.db).QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1::uuid`, id)
	svc, err := scanService(row)
	if err != nil {
		return nil, catalogError("find service", err)
	}
	return svc, nil
}

func (s *Store) FindStaff(ctx context.Context, id string) (*model.StaffMember, error) {
	row := pgdb.Conn(ctx, s.db).QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE id = $1::uuid`, id)
	st, err := scanStaff(row)
	if err != nil {
		return nil, catalogError("find staff", err)
	}
	return st, nil
}

func (s *Store) ListServices(ctx context.Context) ([]*model.Service, error) {
	rows, err := pgdb.Conn(ctx, s.db).Query(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE active ORDER BY category, name`)
	if err != nil {
		return nil, catalogError("list services", err)
	}
	defer rows.Close()

	services := make([]*model.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, catalogError("scan service", err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogError("list services", err)
	}
	return services, nil
}

func (s *Store) ListStaff(ctx context.Context) ([]*model.StaffMember, error) {
	rows, err := pgdb.Conn(ctx, s.db).Query(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE active ORDER BY name`)
	if err != nil {
		return nil, catalogError("list staff", err)
	}
	defer rows.Close()

	staff := make([]*model.StaffMember, 0)
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, catalogError("scan staff", err)
		}
		staff = append(staff, st)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogError("list staff", err)
	}
	return staff, nil
}

func (s *Store) Stats(ctx context.Context) (*model.CatalogStats, error) {
	var stats model.CatalogStats
	err := pgdb.Conn(ctx, s.db).QueryRow(ctx, `
		SELECT now(),
		       (SELECT count(*) FROM services),
		       (SELECT count(*) FROM staff),
		       (SELECT count(*) FROM bookings)`,
	).Scan(&stats.Now, &stats.Services, &stats.Staff, &stats.Bookings)
	if err != nil {
		return nil, catalogError("stats", err)
	}
	stats.Now = stats.Now.UTC()
	return &stats, nil
}
