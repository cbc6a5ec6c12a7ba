package model

import "time"

var validWeightUnits = set("lbs", "kg")

type WeightEntry struct {
	ID        int64     `json:"id"`
	Weight    float64   `json:"weight"`
	Unit      string    `json:"unit"`
	Week      int       `json:"week"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w *WeightEntry) Validate() error {
	chk := newCheck(CollectionWeightEntries)
	if w.Weight <= 0 {
		chk.fail("weight", "must be positive")
	}
	chk.oneOf("unit", w.Unit, validWeightUnits)
	if w.Week < 0 {
		chk.fail("week", "must not be negative")
	}
	chk.date("date", w.Date)
	return chk.result()
}
