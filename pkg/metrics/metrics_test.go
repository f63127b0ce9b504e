package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestBookingMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveAdmission("admitted")
	m.ObserveAdmission("admitted")
	m.ObserveAdmission("slot_taken")

	if got := counterValue(t, reg, "agenda_bookings_admissions_total", "outcome", "admitted"); got != 2 {
		t.Errorf("admitted = %v, want 2", got)
	}
	if got := counterValue(t, reg, "agenda_bookings_admissions_total", "outcome", "slot_taken"); got != 1 {
		t.Errorf("slot_taken = %v, want 1", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var b *BookingMetrics
	var h *HTTPMetrics
	var k *KafkaMetrics

	b.ObserveAdmission("admitted")
	b.ObserveStatusChange("cancelled")
	b.ObserveAvailability(0.1, 3)
	h.ObserveRequest("GET", "/api/staff", "200", 0.01)
	k.ObservePublish("booking.admitted", true, 0.01)
}

func TestHandlerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.ObserveRequest("GET", "/api/services", "200", 0.002)

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "agenda_http_requests_total") {
		t.Errorf("expected request counter in output")
	}
}
