package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"agenda/pkg/logger"
	"agenda/pkg/model"
)

func newValidator() *BookingValidator {
	return NewBookingValidator(logger.Discard())
}

func TestValidateAdmission(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		req       model.AdmissionRequest
		wantField string
	}{
		{
			name: "valid",
			req:  model.AdmissionRequest{ClientName: "Dana", ServiceID: "s-1", StaffID: "st-1", StartTS: start},
		},
		{
			name:      "missing client name",
			req:       model.AdmissionRequest{ServiceID: "s-1", StaffID: "st-1", StartTS: start},
			wantField: "client_name",
		},
		{
			name:      "missing service",
			req:       model.AdmissionRequest{ClientName: "Dana", StaffID: "st-1", StartTS: start},
			wantField: "service_id",
		},
		{
			name:      "missing start",
			req:       model.AdmissionRequest{ClientName: "Dana", ServiceID: "s-1", StaffID: "st-1"},
			wantField: "start_ts",
		},
		{
			name:      "phone too long",
			req:       model.AdmissionRequest{ClientName: "Dana", ClientPhone: strings.Repeat("1", 40), ServiceID: "s-1", StaffID: "st-1", StartTS: start},
			wantField: "client_phone",
		},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAdmission(&tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if _, ok := verrs.Details()[tt.wantField]; !ok {
				t.Errorf("expected error on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestValidateAvailabilityQuery(t *testing.T) {
	v := newValidator()

	if err := v.ValidateAvailabilityQuery(&model.AvailabilityQuery{ServiceID: "s", StaffID: "st", Date: "2025-03-10"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := v.ValidateAvailabilityQuery(&model.AvailabilityQuery{ServiceID: "s", StaffID: "st", Date: "10/03/2025"})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || verrs[0].Field != "date" {
		t.Fatalf("expected date error, got %v", err)
	}
	if !strings.Contains(verrs[0].Message, "YYYY-MM-DD") {
		t.Errorf("message = %q", verrs[0].Message)
	}
}

func TestValidateStatusUpdate(t *testing.T) {
	v := newValidator()

	if err := v.ValidateStatusUpdate(&model.StatusUpdate{Status: model.StatusCancelled}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateStatusUpdate(&model.StatusUpdate{Status: "archived"}); err == nil {
		t.Errorf("expected error for unknown status")
	}
	if err := v.ValidateStatusUpdate(&model.StatusUpdate{}); err == nil {
		t.Errorf("expected error for empty status")
	}
}
