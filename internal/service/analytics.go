package service

import (
	"context"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/training"
)

const defaultWindowDays = 7

// checkDays rejects a negative window. Zero days is the empty window ending now.
func checkDays(days int) error {
	if days < 0 {
		return &model.WriteError{Collection: model.CollectionAnalytics, Field: "days", Reason: "must not be negative"}
	}
	return nil
}

// SuccessRate is the rounded share of successful practice sessions created
// in [now-days, now]. An empty window yields 0.
func (s *Service) SuccessRate(ctx context.Context, days int) (int, error) {
	if err := checkDays(days); err != nil {
		return 0, err
	}
	now := s.now()
	logs, err := s.backend.PracticeLogs.ListCreatedBetween(ctx, training.WindowStart(now, days), now)
	if err != nil {
		return 0, err
	}
	return training.SuccessRate(logs), nil
}

// PottySuccessRate is the rounded share of potty logs in the window that
// were not accidents.
func (s *Service) PottySuccessRate(ctx context.Context, days int) (int, error) {
	if err := checkDays(days); err != nil {
		return 0, err
	}
	now := s.now()
	logs, err := s.backend.PottyLogs.ListCreatedBetween(ctx, training.WindowStart(now, days), now)
	if err != nil {
		return 0, err
	}
	return training.PottySuccessRate(logs), nil
}

// WeeklyProgress summarises the trailing seven days without storing anything.
func (s *Service) WeeklyProgress(ctx context.Context) (model.WeeklyProgress, error) {
	now := s.now()
	from := training.WindowStart(now, defaultWindowDays)

	practice, err := s.backend.PracticeLogs.ListCreatedBetween(ctx, from, now)
	if err != nil {
		return model.WeeklyProgress{}, err
	}
	potty, err := s.backend.PottyLogs.ListCreatedBetween(ctx, from, now)
	if err != nil {
		return model.WeeklyProgress{}, err
	}
	return training.Weekly(practice, potty, now), nil
}

func (s *Service) RecordWeeklySnapshot(ctx context.Context) (*model.AnalyticsSnapshot, error) {
	p, err := s.WeeklyProgress(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.Analytics.Create(ctx, p)
}

func (s *Service) ListSnapshots(ctx context.Context) ([]model.AnalyticsSnapshot, error) {
	return s.backend.Analytics.List(ctx)
}

// AddSnapshot stores an already computed summary, as when restoring.
func (s *Service) AddSnapshot(ctx context.Context, p model.WeeklyProgress) (*model.AnalyticsSnapshot, error) {
	return s.backend.Analytics.Create(ctx, p)
}
