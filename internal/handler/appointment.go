package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
	"github.com/dukerupert/pawlog/internal/training"
	"github.com/dukerupert/pawlog/internal/websocket"
)

type AppointmentHandler struct {
	svc    *service.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAppointmentHandler(svc *service.Service, hub *websocket.Hub, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, hub: hub, logger: logger}
}

// List returns every appointment annotated with its status relative to
// today. ?upcoming=true limits it to open appointments from today on.
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		appts []model.Appointment
		err   error
	)
	if r.URL.Query().Get("upcoming") == "true" {
		appts, err = h.svc.ListUpcomingAppointments(r.Context())
	} else {
		appts, err = h.svc.ListAppointments(r.Context())
	}
	if err != nil {
		writeError(w, h.logger, "list appointments", err)
		return
	}
	writeJSON(w, http.StatusOK, training.WithStatus(appts, h.svc.Now()))
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var a model.Appointment
	if !decode(w, r, &a) {
		return
	}
	created, err := h.svc.AddAppointment(r.Context(), &a)
	if err != nil {
		writeError(w, h.logger, "create appointment", err)
		return
	}
	notify(r, h.hub, model.CollectionAppointments, websocket.ActionCreated, created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var raw json.RawMessage
	if !decode(w, r, &raw) {
		return
	}
	updated, err := h.svc.PatchAppointment(r.Context(), id, overlay[model.Appointment](model.CollectionAppointments, raw))
	if err != nil {
		writeError(w, h.logger, "update appointment", err)
		return
	}
	notify(r, h.hub, model.CollectionAppointments, websocket.ActionUpdated, id)
	writeJSON(w, http.StatusOK, updated)
}

type completeAppointmentResponse struct {
	Appointment *model.Appointment `json:"appointment"`
	FollowUp    *model.Appointment `json:"followUp,omitempty"`
}

func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	done, next, err := h.svc.CompleteAppointment(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "complete appointment", err)
		return
	}
	notify(r, h.hub, model.CollectionAppointments, websocket.ActionCompleted, id)
	if next != nil {
		notify(r, h.hub, model.CollectionAppointments, websocket.ActionCreated, next.ID)
	}
	writeJSON(w, http.StatusOK, completeAppointmentResponse{Appointment: done, FollowUp: next})
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteAppointment(r.Context(), id); err != nil {
		writeError(w, h.logger, "delete appointment", err)
		return
	}
	notify(r, h.hub, model.CollectionAppointments, websocket.ActionDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}
