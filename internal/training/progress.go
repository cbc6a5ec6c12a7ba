// Package training derives progress figures from raw puppy logs.
package training

import (
	"math"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

// Progress recomputes a command's derived fields from all of its practice logs.
func Progress(logs []model.PracticeLog) model.CommandProgress {
	var p model.CommandProgress
	p.SessionsCount = len(logs)
	if len(logs) == 0 {
		return p
	}

	successes := 0
	latest := ""
	for _, l := range logs {
		if l.Success {
			successes++
		}
		if l.Date > latest {
			latest = l.Date
		}
	}
	p.Progress = percent(successes, len(logs))
	p.LastPracticed = &latest
	return p
}

// SuccessRate is the rounded share of successful sessions, 0 for none.
func SuccessRate(logs []model.PracticeLog) int {
	successes := 0
	for _, l := range logs {
		if l.Success {
			successes++
		}
	}
	return percent(successes, len(logs))
}

// PottySuccessRate is the rounded share of potty logs that were not accidents.
func PottySuccessRate(logs []model.PottyLog) int {
	clean := 0
	for _, l := range logs {
		if l.Type != model.PottyTypeAccident {
			clean++
		}
	}
	return percent(clean, len(logs))
}

// Weekly builds the trailing seven day summary ending at now.
func Weekly(practice []model.PracticeLog, potty []model.PottyLog, now time.Time) model.WeeklyProgress {
	return model.WeeklyProgress{
		WeekStart:        WindowStart(now, 7).Format(model.DateLayout),
		TrainingSessions: len(practice),
		PottyLogs:        len(potty),
		SuccessRate:      SuccessRate(practice),
	}
}

// WindowStart returns the beginning of a trailing window of days ending at now.
func WindowStart(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
