package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/pawlog/internal/backup"
	"github.com/dukerupert/pawlog/internal/export"
	"github.com/dukerupert/pawlog/internal/model"
)

// maxBody caps JSON request bodies. Snapshot imports go through the CLI.
const maxBody = 1 << 20

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body into dst and answers 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// overlay returns an apply func that writes the fields present in raw over
// a stored record. Absent fields keep their stored values.
func overlay[T any](collection string, raw json.RawMessage) func(*T) error {
	return func(rec *T) error {
		if err := json.Unmarshal(raw, rec); err != nil {
			we := &model.WriteError{Collection: collection, Reason: "has the wrong type"}
			var te *json.UnmarshalTypeError
			if errors.As(err, &te) {
				we.Field = te.Field
			}
			return we
		}
		return nil
	}
}

// pathID parses {id} and answers 400 when it is not a number.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// writeError maps service errors onto status codes. Unexpected errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, logger *slog.Logger, what string, err error) {
	var we *model.WriteError
	switch {
	case errors.As(err, &we):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": we.Error(), "field": we.Field})
	case errors.Is(err, model.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrConflict):
		writeMessage(w, http.StatusConflict, "record changed, try again")
	case errors.Is(err, export.ErrNothingToExport):
		writeMessage(w, http.StatusNotFound, "nothing to export")
	case errors.Is(err, backup.ErrDisabled):
		writeMessage(w, http.StatusServiceUnavailable, "backups are not configured")
	default:
		logger.Error(what, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to "+what)
	}
}
