package model

import "time"

type FearLog struct {
	ID        int64     `json:"id"`
	Trigger   string    `json:"trigger"`
	Intensity int       `json:"intensity"`
	Response  string    `json:"response"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *FearLog) Validate() error {
	chk := newCheck(CollectionFearLogs)
	chk.required("trigger", f.Trigger)
	chk.between("intensity", f.Intensity, 1, 5)
	chk.date("date", f.Date)
	return chk.result()
}
