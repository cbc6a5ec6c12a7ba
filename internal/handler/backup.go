package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/pawlog/internal/backup"
	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/websocket"
)

type BackupHandler struct {
	mgr    *backup.Manager
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewBackupHandler(mgr *backup.Manager, hub *websocket.Hub, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{mgr: mgr, hub: hub, logger: logger}
}

type backupListResponse struct {
	Status  backup.Status  `json:"status"`
	Backups []model.Backup `json:"backups"`
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	list, err := h.mgr.List(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, "list backups", err)
		return
	}
	if list == nil {
		list = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backupListResponse{Status: h.mgr.Status(), Backups: list})
}

func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	b, err := h.mgr.RunNow(r.Context())
	if err != nil {
		writeError(w, h.logger, "run backup", err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, size, err := h.mgr.Download(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "download backup", err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("pawlog-backup-%d.json", id)))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("stream backup", "id", id, "error", err)
	}
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	written, err := h.mgr.Restore(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "restore backup", err)
		return
	}
	notify(r, h.hub, websocket.EntityAll, websocket.ActionRestored, id)
	writeJSON(w, http.StatusOK, written)
}
