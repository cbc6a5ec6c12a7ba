// Package export writes pawlog records as CSV, XLSX and JSON snapshots.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

// ErrNothingToExport is returned instead of writing a header-only file.
var ErrNothingToExport = errors.New("nothing to export")

var (
	pottyHeader    = []string{"Date", "Time", "Type", "Location", "Logged By"}
	practiceHeader = []string{"Date", "Time", "Attempts", "Successes", "Distractions", "Reliability", "Notes", "Logged By"}
)

func PottyCSV(w io.Writer, logs []model.PottyLog) error {
	if len(logs) == 0 {
		return ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(pottyHeader); err != nil {
		return err
	}
	for _, l := range logs {
		if err := cw.Write([]string{l.Date, l.Time, l.Type, l.Location, l.LoggedBy}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func PracticeCSV(w io.Writer, logs []model.PracticeLog) error {
	if len(logs) == 0 {
		return ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(practiceHeader); err != nil {
		return err
	}
	for _, l := range logs {
		row := []string{
			l.Date,
			l.Time,
			optionalInt(l.Attempts),
			optionalInt(l.Successes),
			l.Distractions,
			optionalInt(l.Reliability),
			l.Notes,
			l.LoggedBy,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func optionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// Filename builds a download name such as "potty-logs-2025-03-01.csv".
func Filename(prefix string, now time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.Format(model.DateLayout), ext)
}
