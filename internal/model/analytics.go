package model

import "time"

// WeeklyProgress summarises the trailing seven days.
type WeeklyProgress struct {
	WeekStart        string `json:"weekStart"`
	TrainingSessions int    `json:"trainingSessions"`
	PottyLogs        int    `json:"pottyLogs"`
	SuccessRate      int    `json:"successRate"`
}

// AnalyticsSnapshot is a persisted WeeklyProgress.
type AnalyticsSnapshot struct {
	ID int64 `json:"id"`
	WeeklyProgress
	CreatedAt time.Time `json:"createdAt"`
}
