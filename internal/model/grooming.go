package model

import "time"

// GroomingLog records how well a grooming activity was tolerated (1 worst, 10 best).
type GroomingLog struct {
	ID              int64     `json:"id"`
	Activity        string    `json:"activity"`
	DurationMinutes int       `json:"duration"`
	Tolerance       int       `json:"tolerance"`
	Date            string    `json:"date"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (g *GroomingLog) Validate() error {
	chk := newCheck(CollectionGroomingLogs)
	chk.required("activity", g.Activity)
	if g.DurationMinutes < 0 {
		chk.fail("duration", "must not be negative")
	}
	chk.between("tolerance", g.Tolerance, 1, 10)
	chk.date("date", g.Date)
	return chk.result()
}
