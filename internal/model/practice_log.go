package model

import "time"

// PracticeLog is one training session for a command.
type PracticeLog struct {
	ID           int64     `json:"id"`
	CommandID    int64     `json:"commandId"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Attempts     *int      `json:"attempts"`
	Successes    *int      `json:"successes"`
	Distractions string    `json:"distractions"`
	Reliability  *int      `json:"reliability"`
	Notes        string    `json:"notes"`
	LoggedBy     string    `json:"loggedBy"`
	Success      bool      `json:"success"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (l *PracticeLog) Validate() error {
	chk := newCheck(CollectionPracticeLogs)
	if l.CommandID <= 0 {
		chk.fail("command_id", "is required")
	}
	chk.date("date", l.Date)
	chk.optionalClock("time", l.Time)
	chk.nonNegative("attempts", l.Attempts)
	chk.nonNegative("successes", l.Successes)
	chk.optionalBetween("reliability", l.Reliability, 1, 10)
	return chk.result()
}
