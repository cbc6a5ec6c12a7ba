package training

import (
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusDueToday  Status = "due_today"
	StatusUpcoming  Status = "upcoming"
)

type AppointmentWithStatus struct {
	model.Appointment
	Status   Status `json:"status"`
	DaysAway int    `json:"daysAway"`
}

// AppointmentStatus classifies an appointment relative to today. Malformed
// dates are treated as upcoming with no distance.
func AppointmentStatus(a model.Appointment, today time.Time) (Status, int) {
	if a.Completed {
		return StatusCompleted, 0
	}

	due, err := time.ParseInLocation(model.DateLayout, a.Date, today.Location())
	if err != nil {
		return StatusUpcoming, 0
	}
	days := int(due.Sub(startOfDay(today)).Hours() / 24)

	switch {
	case days < 0:
		return StatusOverdue, days
	case days == 0:
		return StatusDueToday, 0
	default:
		return StatusUpcoming, days
	}
}

// WithStatus annotates each appointment.
func WithStatus(appts []model.Appointment, today time.Time) []AppointmentWithStatus {
	out := make([]AppointmentWithStatus, 0, len(appts))
	for _, a := range appts {
		status, days := AppointmentStatus(a, today)
		out = append(out, AppointmentWithStatus{Appointment: a, Status: status, DaysAway: days})
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
