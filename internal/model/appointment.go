package model

import "time"

type Appointment struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Location      string    `json:"location"`
	Notes         string    `json:"notes"`
	Reminder      bool      `json:"reminder"`
	Recurring     bool      `json:"recurring"`
	RecurringType string    `json:"recurringType"`
	NextDueDate   *string   `json:"nextDueDate"`
	Completed     bool      `json:"completed"`
	Documents     []string  `json:"documents"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (a *Appointment) Validate() error {
	chk := newCheck(CollectionAppointments)
	chk.required("title", a.Title)
	chk.date("date", a.Date)
	chk.optionalClock("time", a.Time)
	chk.optionalDate("next_due_date", a.NextDueDate)
	return chk.result()
}
