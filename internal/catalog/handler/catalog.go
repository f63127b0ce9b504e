package handler

import (
	"net/http"

	"agenda/internal/catalog/service"
	httputil "agenda/pkg/http"
	"agenda/pkg/logger"
	"agenda/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log,
	}
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services, err := h.service.ListServices(r.Context())
	if err != nil {
		h.writeError(w, "ListServices", err)
		return
	}

	if err := httputil.WriteList(w, services, len(services)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListServices", "operation", "WriteList", "error", err)
	}
}

func (h *CatalogHandler) ListStaff(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	staff, err := h.service.ListStaff(r.Context())
	if err != nil {
		h.writeError(w, "ListStaff", err)
		return
	}

	if err := httputil.WriteList(w, staff, len(staff)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListStaff", "operation", "WriteList", "error", err)
	}
}

// DebugDB reports the store clock and row counts.
func (h *CatalogHandler) DebugDB(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, "DebugDB", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "DebugDB", "operation", "WriteSuccess", "error", err)
	}
}

// DebugStaff shows the staff fields and the first active staff member.
func (h *CatalogHandler) DebugStaff(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	staff, err := h.service.ListStaff(r.Context())
	if err != nil {
		h.writeError(w, "DebugStaff", err)
		return
	}

	resp := model.StaffDebug{OK: true, Fields: model.StaffFields, Sample: staff[:min(1, len(staff))]}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "DebugStaff", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/services", h.ListServices)
	router.GET("/api/staff", h.ListStaff)
	router.GET("/api/debug/db", h.DebugDB)
	router.GET("/api/debug/staff", h.DebugStaff)
}
