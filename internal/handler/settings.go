package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/pawlog/internal/migration"
	"github.com/dukerupert/pawlog/internal/service"
	"github.com/dukerupert/pawlog/internal/store"
	"github.com/dukerupert/pawlog/internal/websocket"
)

type SettingsHandler struct {
	settings *store.SettingsStore
	svc      *service.Service
	legacy   migration.Source
	all      bool
	hub      *websocket.Hub
	logger   *slog.Logger
}

// NewSettingsHandler serves settings and legacy migration state. legacy may
// be nil, in which case migration can be inspected but not run. allFamilies
// is set for remote deployments, which migrate training data too.
func NewSettingsHandler(ss *store.SettingsStore, svc *service.Service, legacy migration.Source, allFamilies bool, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: ss, svc: svc, legacy: legacy, all: allFamilies, hub: hub, logger: logger}
}

func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.settings.GetAll(r.Context())
	if err != nil {
		writeError(w, h.logger, "list settings", err)
		return
	}
	if list == nil {
		list = []store.Setting{}
	}
	writeJSON(w, http.StatusOK, list)
}

type settingRequest struct {
	Value string `json:"value"`
}

// Set stores a value. Keys under the migration prefix are reserved.
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" || key == migration.FlagCompleted || strings.HasPrefix(key, "migration:") {
		writeMessage(w, http.StatusBadRequest, "invalid key")
		return
	}
	var req settingRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.settings.Set(r.Context(), key, req.Value); err != nil {
		writeError(w, h.logger, "set setting", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

func (h *SettingsHandler) migrator() *migration.Migrator {
	return migration.New(h.legacy, h.svc, h.settings, migration.Options{AllFamilies: h.all})
}

func (h *SettingsHandler) MigrationStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.migrator().Status(r.Context())
	if err != nil {
		writeError(w, h.logger, "read migration status", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// RunMigration imports the legacy export once.
func (h *SettingsHandler) RunMigration(w http.ResponseWriter, r *http.Request) {
	if h.legacy == nil {
		writeMessage(w, http.StatusServiceUnavailable, "no legacy data configured")
		return
	}
	res, err := h.migrator().Run(r.Context())
	if err != nil {
		writeError(w, h.logger, "run migration", err)
		return
	}
	if !res.AlreadyDone {
		notify(r, h.hub, websocket.EntityAll, websocket.ActionRestored, 0)
	}
	writeJSON(w, http.StatusOK, res)
}
