package model

import "time"

const PottyTypeAccident = "accident"

var (
	validPottyTypes     = set("pee", "poop", "both", PottyTypeAccident)
	validPottyLocations = set("inside", "outside", "crate", "designated")
)

type PottyLog struct {
	ID        int64     `json:"id"`
	CommandID int64     `json:"commandId"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Type      string    `json:"type"`
	Location  string    `json:"location"`
	LoggedBy  string    `json:"loggedBy"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l *PottyLog) Validate() error {
	chk := newCheck(CollectionPottyLogs)
	if l.CommandID <= 0 {
		chk.fail("command_id", "is required")
	}
	chk.date("date", l.Date)
	chk.optionalClock("time", l.Time)
	chk.oneOf("type", l.Type, validPottyTypes)
	chk.oneOf("location", l.Location, validPottyLocations)
	return chk.result()
}
