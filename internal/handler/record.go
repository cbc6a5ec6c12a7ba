package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pawlog/internal/service"
	"github.com/dukerupert/pawlog/internal/websocket"
)

// RecordHandler serves plain CRUD for a collection without derived state.
type RecordHandler[T any] struct {
	records *service.Collection[T]
	id      func(*T) int64
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewRecordHandler[T any](c *service.Collection[T], id func(*T) int64, hub *websocket.Hub, logger *slog.Logger) *RecordHandler[T] {
	return &RecordHandler[T]{records: c, id: id, hub: hub, logger: logger}
}

func (h *RecordHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.records.List(r.Context())
	if err != nil {
		writeError(w, h.logger, "list "+h.records.Name(), err)
		return
	}
	if list == nil {
		list = []T{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RecordHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.records.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "get "+h.records.Name(), err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var rec T
	if !decode(w, r, &rec) {
		return
	}
	created, err := h.records.Add(r.Context(), &rec)
	if err != nil {
		writeError(w, h.logger, "create "+h.records.Name(), err)
		return
	}
	notify(r, h.hub, h.records.Name(), websocket.ActionCreated, h.id(created))
	writeJSON(w, http.StatusCreated, created)
}

// Update merges the request fields into the stored record.
func (h *RecordHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var raw json.RawMessage
	if !decode(w, r, &raw) {
		return
	}
	updated, err := h.records.Patch(r.Context(), id, overlay[T](h.records.Name(), raw))
	if err != nil {
		writeError(w, h.logger, "update "+h.records.Name(), err)
		return
	}
	notify(r, h.hub, h.records.Name(), websocket.ActionUpdated, id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *RecordHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.records.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, "delete "+h.records.Name(), err)
		return
	}
	notify(r, h.hub, h.records.Name(), websocket.ActionDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func notify(r *http.Request, hub *websocket.Hub, entity, action string, id int64) {
	if hub != nil {
		hub.Notify(r.Context(), entity, action, id)
	}
}
