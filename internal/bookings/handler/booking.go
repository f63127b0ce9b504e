package handler

import (
	"net/http"

	"agenda/internal/bookings/service"
	apperrors "agenda/pkg/errors"
	httputil "agenda/pkg/http"
	"agenda/pkg/logger"
	"agenda/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	q := model.AvailabilityQuery{
		ServiceID: query.Get("service_id"),
		StaffID:   query.Get("staff_id"),
		Date:      query.Get("date"),
	}

	availability, err := h.service.Availability(r.Context(), &q)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AdmissionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	resp, err := h.service.Admit(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// ListForStaffDay serves GET /api/bookings?staff_id=...&date=YYYY-MM-DD.
func (h *BookingHandler) ListForStaffDay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	staffID, date := query.Get("staff_id"), query.Get("date")
	if staffID == "" || date == "" {
		h.writeError(w, "ListForStaffDay", apperrors.InvalidRequest("staff_id and date query parameters are required"))
		return
	}

	bookings, err := h.service.ListForStaffDay(r.Context(), staffID, date)
	if err != nil {
		h.writeError(w, "ListForStaffDay", err)
		return
	}

	if err := httputil.WriteList(w, bookings, len(bookings)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListForStaffDay", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.StatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), &update); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/availability", h.Availability)
	router.POST("/api/bookings", h.Create)
	router.GET("/api/bookings", h.ListForStaffDay)
	router.GET("/api/bookings/:id", h.GetByID)
	router.PATCH("/api/bookings/:id/status", h.UpdateStatus)
}
