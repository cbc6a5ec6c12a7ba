package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
	"github.com/dukerupert/pawlog/internal/websocket"
)

type AnalyticsHandler struct {
	svc    *service.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAnalyticsHandler(svc *service.Service, hub *websocket.Hub, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, hub: hub, logger: logger}
}

type rateResponse struct {
	Days int `json:"days"`
	Rate int `json:"rate"`
}

// daysParam reads ?days=N, defaulting to a week when absent. Negative
// values are left for the service to reject.
func daysParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 7, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "days must be a number")
		return 0, false
	}
	return days, true
}

func (h *AnalyticsHandler) SuccessRate(w http.ResponseWriter, r *http.Request) {
	days, ok := daysParam(w, r)
	if !ok {
		return
	}
	rate, err := h.svc.SuccessRate(r.Context(), days)
	if err != nil {
		writeError(w, h.logger, "compute success rate", err)
		return
	}
	writeJSON(w, http.StatusOK, rateResponse{Days: days, Rate: rate})
}

func (h *AnalyticsHandler) PottySuccessRate(w http.ResponseWriter, r *http.Request) {
	days, ok := daysParam(w, r)
	if !ok {
		return
	}
	rate, err := h.svc.PottySuccessRate(r.Context(), days)
	if err != nil {
		writeError(w, h.logger, "compute potty success rate", err)
		return
	}
	writeJSON(w, http.StatusOK, rateResponse{Days: days, Rate: rate})
}

func (h *AnalyticsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.WeeklyProgress(r.Context())
	if err != nil {
		writeError(w, h.logger, "compute weekly progress", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AnalyticsHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListSnapshots(r.Context())
	if err != nil {
		writeError(w, h.logger, "list snapshots", err)
		return
	}
	if list == nil {
		list = []model.AnalyticsSnapshot{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AnalyticsHandler) RecordSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.RecordWeeklySnapshot(r.Context())
	if err != nil {
		writeError(w, h.logger, "record snapshot", err)
		return
	}
	notify(r, h.hub, model.CollectionAnalytics, websocket.ActionCreated, snap.ID)
	writeJSON(w, http.StatusCreated, snap)
}

func (h *AnalyticsHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Counts(r.Context())
	if err != nil {
		writeError(w, h.logger, "count records", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
