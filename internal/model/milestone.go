package model

import "time"

var validImportance = set("low", "medium", "high")

type Milestone struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	TargetWeek    int       `json:"targetWeek"`
	Completed     bool      `json:"completed"`
	CompletedDate *string   `json:"completedDate"`
	PhotoRef      string    `json:"photoRef"`
	Notes         string    `json:"notes"`
	Importance    string    `json:"importance"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (m *Milestone) Validate() error {
	chk := newCheck(CollectionMilestones)
	chk.required("title", m.Title)
	chk.oneOf("importance", m.Importance, validImportance)
	if m.TargetWeek < 0 {
		chk.fail("target_week", "must not be negative")
	}
	if !m.Completed && m.CompletedDate != nil {
		chk.fail("completed_date", "must be empty while not completed")
	}
	chk.optionalDate("completed_date", m.CompletedDate)
	return chk.result()
}
