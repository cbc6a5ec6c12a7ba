package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
	"github.com/dukerupert/pawlog/internal/websocket"
)

// CommandHandler serves commands and their practice logs. Practice log
// writes also announce the command whose progress moved.
type CommandHandler struct {
	svc    *service.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewCommandHandler(svc *service.Service, hub *websocket.Hub, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{svc: svc, hub: hub, logger: logger}
}

func (h *CommandHandler) List(w http.ResponseWriter, r *http.Request) {
	cmds, err := h.svc.ListCommands(r.Context())
	if err != nil {
		writeError(w, h.logger, "list commands", err)
		return
	}
	if cmds == nil {
		cmds = []model.Command{}
	}
	writeJSON(w, http.StatusOK, cmds)
}

func (h *CommandHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetCommand(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "get command", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommandHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c model.Command
	if !decode(w, r, &c) {
		return
	}
	created, err := h.svc.AddCommand(r.Context(), &c)
	if err != nil {
		writeError(w, h.logger, "create command", err)
		return
	}
	notify(r, h.hub, model.CollectionCommands, websocket.ActionCreated, created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (h *CommandHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var raw json.RawMessage
	if !decode(w, r, &raw) {
		return
	}
	updated, err := h.svc.PatchCommand(r.Context(), id, overlay[model.Command](model.CollectionCommands, raw))
	if err != nil {
		writeError(w, h.logger, "update command", err)
		return
	}
	notify(r, h.hub, model.CollectionCommands, websocket.ActionUpdated, id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *CommandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCommand(r.Context(), id); err != nil {
		writeError(w, h.logger, "delete command", err)
		return
	}
	notify(r, h.hub, model.CollectionCommands, websocket.ActionDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// PracticeLogs lists the logs of one command.
func (h *CommandHandler) PracticeLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.GetCommand(r.Context(), id); err != nil {
		writeError(w, h.logger, "get command", err)
		return
	}
	logs, err := h.svc.ListPracticeLogsByCommand(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "list practice logs", err)
		return
	}
	if logs == nil {
		logs = []model.PracticeLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *CommandHandler) ListPracticeLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.ListPracticeLogs(r.Context())
	if err != nil {
		writeError(w, h.logger, "list practice logs", err)
		return
	}
	if logs == nil {
		logs = []model.PracticeLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *CommandHandler) CreatePracticeLog(w http.ResponseWriter, r *http.Request) {
	var l model.PracticeLog
	if !decode(w, r, &l) {
		return
	}
	created, err := h.svc.AddPracticeLog(r.Context(), &l)
	if err != nil {
		writeError(w, h.logger, "create practice log", err)
		return
	}
	notify(r, h.hub, model.CollectionPracticeLogs, websocket.ActionCreated, created.ID)
	notify(r, h.hub, model.CollectionCommands, websocket.ActionUpdated, created.CommandID)
	writeJSON(w, http.StatusCreated, created)
}

func (h *CommandHandler) UpdatePracticeLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var raw json.RawMessage
	if !decode(w, r, &raw) {
		return
	}
	updated, err := h.svc.PatchPracticeLog(r.Context(), id, overlay[model.PracticeLog](model.CollectionPracticeLogs, raw))
	if err != nil {
		writeError(w, h.logger, "update practice log", err)
		return
	}
	notify(r, h.hub, model.CollectionPracticeLogs, websocket.ActionUpdated, id)
	notify(r, h.hub, model.CollectionCommands, websocket.ActionUpdated, updated.CommandID)
	writeJSON(w, http.StatusOK, updated)
}

func (h *CommandHandler) DeletePracticeLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePracticeLog(r.Context(), id); err != nil {
		writeError(w, h.logger, "delete practice log", err)
		return
	}
	notify(r, h.hub, model.CollectionPracticeLogs, websocket.ActionDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}
