package model

import "time"

// PottyCommandName is the seeded pseudo-command potty logs attach to.
const PottyCommandName = "Potty Training"

var validDifficulties = set("easy", "medium", "hard")

type Command struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	AgeWeek       int       `json:"ageWeek"`
	Difficulty    string    `json:"difficulty"`
	Progress      int       `json:"progress"`
	SessionsCount int       `json:"sessionsCount"`
	LastPracticed *string   `json:"lastPracticed"`
	IsCustom      bool      `json:"isCustom"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (c *Command) Validate() error {
	chk := newCheck(CollectionCommands)
	chk.required("name", c.Name)
	chk.oneOf("difficulty", c.Difficulty, validDifficulties)
	chk.between("progress", c.Progress, 0, 100)
	if c.SessionsCount < 0 {
		chk.fail("sessions_count", "must not be negative")
	}
	if c.AgeWeek < 0 {
		chk.fail("age_week", "must not be negative")
	}
	chk.optionalDate("last_practiced", c.LastPracticed)
	return chk.result()
}

// CommandProgress holds the fields derived from a command's practice logs.
type CommandProgress struct {
	Progress      int
	SessionsCount int
	LastPracticed *string
}
