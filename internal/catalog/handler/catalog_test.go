package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
	"agenda/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockCatalogService struct {
	listServicesFunc func(ctx context.Context) ([]*model.Service, error)
	listStaffFunc    func(ctx context.Context) ([]*model.StaffMember, error)
	statsFunc        func(ctx context.Context) (*model.CatalogStats, error)
}

func (m *mockCatalogService) GetService(ctx context.Context, id string) (*model.Service, error) {
	return nil, nil
}

func (m *mockCatalogService) GetStaff(ctx context.Context, id string) (*model.StaffMember, error) {
	return nil, nil
}

func (m *mockCatalogService) ListServices(ctx context.Context) ([]*model.Service, error) {
	if m.listServicesFunc != nil {
		return m.listServicesFunc(ctx)
	}
	return []*model.Service{}, nil
}

func (m *mockCatalogService) ListStaff(ctx context.Context) ([]*model.StaffMember, error) {
	if m.listStaffFunc != nil {
		return m.listStaffFunc(ctx)
	}
	return []*model.StaffMember{
		{ID: "st-1", Name: "Noa", Role: "colorist", Active: true},
		{ID: "st-2", Name: "Avi", Role: "stylist", Active: true},
	}, nil
}

func (m *mockCatalogService) Stats(ctx context.Context) (*model.CatalogStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return &model.CatalogStats{}, nil
}

func newRouter(svc *mockCatalogService) *httprouter.Router {
	router := httprouter.New()
	NewCatalogHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestListServices(t *testing.T) {
	svc := &mockCatalogService{
		listServicesFunc: func(ctx context.Context) ([]*model.Service, error) {
			return []*model.Service{
				{ID: "s-1", Name: "Cut", Category: "hair", DurationMin: 30, Active: true},
				{ID: "s-2", Name: "Color", Category: "hair", DurationMin: 90, Active: true},
			}, nil
		},
	}

	rr := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/services", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Data  []model.Service `json:"data"`
		Count int             `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || resp.Data[1].DurationMin != 90 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestListServices_StoreDown(t *testing.T) {
	svc := &mockCatalogService{
		listServicesFunc: func(ctx context.Context) ([]*model.Service, error) {
			return nil, apperrors.StoreUnavailable(context.DeadlineExceeded)
		},
	}

	rr := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/services", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestListStaff(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(&mockCatalogService{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/staff", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestDebugDB(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	svc := &mockCatalogService{
		statsFunc: func(ctx context.Context) (*model.CatalogStats, error) {
			return &model.CatalogStats{Now: now, Services: 4, Staff: 2, Bookings: 7}, nil
		},
	}

	rr := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/debug/db", nil))

	var stats model.CatalogStats
	if err := json.NewDecoder(rr.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Services != 4 || stats.Staff != 2 || stats.Bookings != 7 || !stats.Now.Equal(now) {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestDebugStaff(t *testing.T) {
	tests := []struct {
		name       string
		list       func(ctx context.Context) ([]*model.StaffMember, error)
		wantStatus int
		wantSample int
	}{
		{name: "first record only", wantStatus: http.StatusOK, wantSample: 1},
		{
			name: "no staff",
			list: func(ctx context.Context) ([]*model.StaffMember, error) {
				return []*model.StaffMember{}, nil
			},
			wantStatus: http.StatusOK,
			wantSample: 0,
		},
		{
			name: "store down",
			list: func(ctx context.Context) ([]*model.StaffMember, error) {
				return nil, apperrors.StoreUnavailable(context.DeadlineExceeded)
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			newRouter(&mockCatalogService{listStaffFunc: tt.list}).
				ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/debug/staff", nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp model.StaffDebug
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !resp.OK || len(resp.Fields) != 4 || len(resp.Sample) != tt.wantSample {
				t.Errorf("unexpected response %+v", resp)
			}
			if tt.wantSample == 1 && resp.Sample[0].Role != "colorist" {
				t.Errorf("role = %q", resp.Sample[0].Role)
			}
		})
	}
}
