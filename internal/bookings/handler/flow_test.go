package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agenda/internal/bookings/events"
	"agenda/internal/bookings/handler"
	"agenda/internal/bookings/service"
	"agenda/internal/bookings/validator"
	catalogservice "agenda/internal/catalog/service"
	clientservice "agenda/internal/clients/service"
	"agenda/internal/scheduling"
	"agenda/internal/store/memory"
	"agenda/pkg/logger"
	"agenda/pkg/middleware"
	"agenda/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	srv, _ := newServerWith(t, nil)
	return srv
}

func newServerWith(t *testing.T, dispatcher *events.Dispatcher) (http.Handler, *memory.Store) {
	t.Helper()
	log := logger.Discard()

	store := memory.New()
	store.Seed(
		[]model.Service{{ID: "s-cut", Name: "Cut", Category: "hair", DurationMin: 30, Active: true}},
		[]model.StaffMember{{ID: "st-1", Name: "Noa", Active: true}},
	)
	hours, err := scheduling.ParseWorkingHours("09:00", "19:00")
	require.NoError(t, err)

	svc := service.NewBookingService(
		store,
		catalogservice.NewCatalogService(store, log),
		clientservice.NewClientService(store, "IL", log),
		validator.NewBookingValidator(log),
		dispatcher,
		nil,
		service.Options{Hours: hours, Step: 30 * time.Minute, InitialStatus: model.StatusConfirmed},
		log,
	)

	router := httprouter.New()
	handler.NewBookingHandler(svc, log).RegisterRoutes(router)
	return router, store
}

func availableStarts(t *testing.T, srv http.Handler) []time.Time {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/availability?service_id=s-cut&staff_id=st-1&date=2025-03-10", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body model.Availability
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	starts := make([]time.Time, 0, len(body.Slots))
	for _, s := range body.Slots {
		starts = append(starts, s.Start)
	}
	return starts
}

func book(srv http.Handler, start string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"client_name":"Dana","client_phone":"054-123-4567","service_id":"s-cut","staff_id":"st-1","start_ts":%q}`, start)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body)))
	return rr
}

func TestBookingFlow(t *testing.T) {
	srv := newServer(t)
	ten := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	require.Len(t, availableStarts(t, srv), 20)

	rr := book(srv, "2025-03-10T10:00:00Z")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created model.AdmissionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	require.NotEmpty(t, created.BookingID)

	starts := availableStarts(t, srv)
	assert.Len(t, starts, 19)
	assert.NotContains(t, starts, ten)

	rr = book(srv, "2025-03-10T10:00:00Z")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "SLOT_TAKEN")

	rr = book(srv, "2025-03-10T10:30:00Z")
	assert.Equal(t, http.StatusCreated, rr.Code, "back-to-back booking is admitted")

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/bookings/"+created.BookingID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var got model.Booking
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, model.StatusConfirmed, got.Status)
	assert.True(t, got.EndTS.Equal(ten.Add(30*time.Minute)))

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/api/bookings/"+created.BookingID+"/status",
		strings.NewReader(`{"status":"cancelled"}`)))
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	starts = availableStarts(t, srv)
	assert.Len(t, starts, 19)
	assert.Contains(t, starts, ten)

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/bookings?staff_id=st-1&date=2025-03-10", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"cancelled"`)
}

// stalledPublisher holds every publish until released or cancelled, like a
// broker that stopped acknowledging.
type stalledPublisher struct {
	release chan struct{}
}

func (p *stalledPublisher) BookingAdmitted(ctx context.Context, b *model.Booking) error {
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *stalledPublisher) StatusChanged(ctx context.Context, b *model.Booking, previous model.BookingStatus) error {
	return p.BookingAdmitted(ctx, b)
}

func TestBookingFlow_StalledBrokerDoesNotTimeOutAdmission(t *testing.T) {
	pub := &stalledPublisher{release: make(chan struct{})}
	dispatcher := events.NewDispatcher(pub, time.Minute, logger.Discard())
	router, store := newServerWith(t, dispatcher)
	srv := middleware.RequestTimeout(100 * time.Millisecond)(router)
	t.Cleanup(func() {
		close(pub.release)
		dispatcher.Wait()
	})

	rr := book(srv, "2025-03-10T10:00:00Z")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created model.AdmissionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	require.NotEmpty(t, created.BookingID)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	saved, err := store.FindBookings(context.Background(), "st-1", day, day.AddDate(0, 0, 1), nil)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, created.BookingID, saved[0].ID)

	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/api/bookings/"+created.BookingID+"/status",
		strings.NewReader(`{"status":"cancelled"}`)))
	assert.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())
}
