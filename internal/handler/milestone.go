package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
	"github.com/dukerupert/pawlog/internal/websocket"
)

type MilestoneHandler struct {
	svc    *service.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewMilestoneHandler(svc *service.Service, hub *websocket.Hub, logger *slog.Logger) *MilestoneHandler {
	return &MilestoneHandler{svc: svc, hub: hub, logger: logger}
}

func (h *MilestoneHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListMilestones(r.Context())
	if err != nil {
		writeError(w, h.logger, "list milestones", err)
		return
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := list[:0]
		for _, m := range list {
			if m.Category == category {
				filtered = append(filtered, m)
			}
		}
		list = filtered
	}
	if list == nil {
		list = []model.Milestone{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var m model.Milestone
	if !decode(w, r, &m) {
		return
	}
	created, err := h.svc.AddMilestone(r.Context(), &m)
	if err != nil {
		writeError(w, h.logger, "create milestone", err)
		return
	}
	notify(r, h.hub, model.CollectionMilestones, websocket.ActionCreated, created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (h *MilestoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var raw json.RawMessage
	if !decode(w, r, &raw) {
		return
	}
	updated, err := h.svc.PatchMilestone(r.Context(), id, overlay[model.Milestone](model.CollectionMilestones, raw))
	if err != nil {
		writeError(w, h.logger, "update milestone", err)
		return
	}
	notify(r, h.hub, model.CollectionMilestones, websocket.ActionUpdated, id)
	writeJSON(w, http.StatusOK, updated)
}

type completeRequest struct {
	Completed *bool `json:"completed"`
}

// Complete marks a milestone done, or undone with {"completed": false}.
// An empty body means done.
func (h *MilestoneHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	done := true
	if r.ContentLength != 0 {
		var req completeRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Completed != nil {
			done = *req.Completed
		}
	}
	m, err := h.svc.CompleteMilestone(r.Context(), id, done)
	if err != nil {
		writeError(w, h.logger, "complete milestone", err)
		return
	}
	notify(r, h.hub, model.CollectionMilestones, websocket.ActionCompleted, id)
	writeJSON(w, http.StatusOK, m)
}

func (h *MilestoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteMilestone(r.Context(), id); err != nil {
		writeError(w, h.logger, "delete milestone", err)
		return
	}
	notify(r, h.hub, model.CollectionMilestones, websocket.ActionDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}
