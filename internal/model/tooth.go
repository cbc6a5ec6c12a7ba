package model

import "time"

var validToothTypes = set("incisor", "canine", "premolar", "molar")

type ToothLog struct {
	ID        int64     `json:"id"`
	ToothType string    `json:"toothType"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t *ToothLog) Validate() error {
	chk := newCheck(CollectionToothLogs)
	chk.oneOf("tooth_type", t.ToothType, validToothTypes)
	chk.date("date", t.Date)
	return chk.result()
}
