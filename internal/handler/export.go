package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/pawlog/internal/export"
	"github.com/dukerupert/pawlog/internal/service"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves downloads. Files are rendered into memory first so
// an empty export can still answer with an error status.
type ExportHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewExportHandler(svc *service.Service, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger}
}

func (h *ExportHandler) send(w http.ResponseWriter, contentType, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *ExportHandler) PottyCSV(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.PottyLogs.List(r.Context())
	if err != nil {
		writeError(w, h.logger, "list potty logs", err)
		return
	}
	var buf bytes.Buffer
	if err := export.PottyCSV(&buf, logs); err != nil {
		writeError(w, h.logger, "export potty logs", err)
		return
	}
	h.send(w, "text/csv; charset=utf-8", export.Filename("potty-logs", h.svc.Now(), "csv"), &buf)
}

func (h *ExportHandler) PracticeCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cmd, err := h.svc.GetCommand(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "get command", err)
		return
	}
	logs, err := h.svc.ListPracticeLogsByCommand(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "list practice logs", err)
		return
	}
	var buf bytes.Buffer
	if err := export.PracticeCSV(&buf, logs); err != nil {
		writeError(w, h.logger, "export practice logs", err)
		return
	}
	prefix := "practice-" + slug(cmd.Name)
	h.send(w, "text/csv; charset=utf-8", export.Filename(prefix, h.svc.Now(), "csv"), &buf)
}

func (h *ExportHandler) Workbook(w http.ResponseWriter, r *http.Request) {
	snap, err := export.Collect(r.Context(), h.svc)
	if err != nil {
		writeError(w, h.logger, "collect records", err)
		return
	}
	var buf bytes.Buffer
	if err := export.Workbook(&buf, snap); err != nil {
		writeError(w, h.logger, "export workbook", err)
		return
	}
	h.send(w, xlsxType, export.Filename("pawlog", h.svc.Now(), "xlsx"), &buf)
}

func (h *ExportHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := export.Collect(r.Context(), h.svc)
	if err != nil {
		writeError(w, h.logger, "collect records", err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, snap); err != nil {
		writeError(w, h.logger, "export snapshot", err)
		return
	}
	h.send(w, "application/json", export.Filename("pawlog-snapshot", h.svc.Now(), "json"), &buf)
}

// slug lowercases name and keeps letters and digits, joining words with "-".
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
