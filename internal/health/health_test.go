package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agenda/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

func serve(h *HealthHandler, path string) (*httptest.ResponseRecorder, HealthResponse) {
	router := httprouter.New()
	h.RegisterRoutes(router)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	var body HealthResponse
	_ = json.NewDecoder(rr.Body).Decode(&body)
	return rr, body
}

func TestHealth(t *testing.T) {
	for _, path := range []string{"/health", "/api/health"} {
		rr, body := serve(NewHealthHandler(logger.Discard()), path)
		if rr.Code != http.StatusOK || body.Status != "ok" {
			t.Errorf("%s: got %d %+v", path, rr.Code, body)
		}
	}
}

func TestReady(t *testing.T) {
	ok := Check{Name: "store", Ping: func(context.Context) error { return nil }}
	down := Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	rr, body := serve(NewHealthHandler(logger.Discard(), ok), "/ready")
	if rr.Code != http.StatusOK || body.Status != "ready" || body.Checks["store"] != "ok" {
		t.Errorf("healthy: got %d %+v", rr.Code, body)
	}

	rr, body = serve(NewHealthHandler(logger.Discard(), ok, down), "/ready")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
	if body.Checks["store"] != "ok" || body.Checks["redis"] != "error" {
		t.Errorf("checks = %+v", body.Checks)
	}
}
