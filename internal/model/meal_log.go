package model

import "time"

var validMealTypes = set("breakfast", "lunch", "dinner", "snack", "treat")

type MealLog struct {
	ID        int64     `json:"id"`
	CommandID int64     `json:"commandId"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	MealType  string    `json:"mealType"`
	Amount    string    `json:"amount"`
	Food      string    `json:"food"`
	LoggedBy  string    `json:"loggedBy"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l *MealLog) Validate() error {
	chk := newCheck(CollectionMealLogs)
	if l.CommandID <= 0 {
		chk.fail("command_id", "is required")
	}
	chk.date("date", l.Date)
	chk.optionalClock("time", l.Time)
	chk.oneOf("meal_type", l.MealType, validMealTypes)
	return chk.result()
}
