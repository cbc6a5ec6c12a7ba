package model

import "time"

// NapLog records a nap. EndTime before StartTime means the nap ran past midnight.
type NapLog struct {
	ID        int64     `json:"id"`
	CommandID int64     `json:"commandId"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   *string   `json:"endTime"`
	Location  string    `json:"location"`
	LoggedBy  string    `json:"loggedBy"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l *NapLog) Validate() error {
	chk := newCheck(CollectionNapLogs)
	if l.CommandID <= 0 {
		chk.fail("command_id", "is required")
	}
	chk.date("date", l.Date)
	chk.clock("start_time", l.StartTime)
	if l.EndTime != nil {
		chk.optionalClock("end_time", *l.EndTime)
	}
	return chk.result()
}

// Duration returns how long the nap lasted, or false while it is still open.
func (l *NapLog) Duration() (time.Duration, bool) {
	if l.EndTime == nil || *l.EndTime == "" {
		return 0, false
	}
	start, err := time.Parse(TimeLayout, l.StartTime)
	if err != nil {
		return 0, false
	}
	end, err := time.Parse(TimeLayout, *l.EndTime)
	if err != nil {
		return 0, false
	}
	d := end.Sub(start)
	if d < 0 {
		d += 24 * time.Hour
	}
	return d, true
}
