package training

import (
	"testing"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

func TestAppointmentStatus(t *testing.T) {
	today := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		appt   model.Appointment
		status Status
		days   int
	}{
		{"completed", model.Appointment{Date: "2025-03-01", Completed: true}, StatusCompleted, 0},
		{"overdue", model.Appointment{Date: "2025-03-08"}, StatusOverdue, -2},
		{"today", model.Appointment{Date: "2025-03-10"}, StatusDueToday, 0},
		{"upcoming", model.Appointment{Date: "2025-03-31"}, StatusUpcoming, 21},
		{"malformed", model.Appointment{Date: "soon"}, StatusUpcoming, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, days := AppointmentStatus(tt.appt, today)
			if status != tt.status {
				t.Errorf("status = %q, want %q", status, tt.status)
			}
			if days != tt.days {
				t.Errorf("days = %d, want %d", days, tt.days)
			}
		})
	}
}

func TestWithStatusKeepsOrder(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	out := WithStatus([]model.Appointment{{ID: 1, Date: "2025-03-01"}, {ID: 2, Date: "2025-04-01"}}, today)

	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 2 {
		t.Fatalf("got %+v", out)
	}
	if out[0].Status != StatusOverdue || out[1].Status != StatusUpcoming {
		t.Errorf("statuses = %q, %q", out[0].Status, out[1].Status)
	}
}
