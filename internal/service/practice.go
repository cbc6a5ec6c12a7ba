package service

import (
	"context"
	"errors"

	"github.com/dukerupert/pawlog/internal/model"
)

func (s *Service) AddPracticeLog(ctx context.Context, l *model.PracticeLog) (*model.PracticeLog, error) {
	l.LoggedBy = loggedBy(ctx, l.LoggedBy)
	created, err := s.backend.PracticeLogs.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	if err := s.RecomputeProgress(ctx, created.CommandID); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) ListPracticeLogs(ctx context.Context) ([]model.PracticeLog, error) {
	return s.backend.PracticeLogs.List(ctx)
}

func (s *Service) ListPracticeLogsByCommand(ctx context.Context, commandID int64) ([]model.PracticeLog, error) {
	return s.backend.PracticeLogs.ListByCommand(ctx, commandID)
}

// UpdatePracticeLog recomputes progress for the log's command, and for the
// previous command too when the log moved.
func (s *Service) UpdatePracticeLog(ctx context.Context, id int64, l *model.PracticeLog) (*model.PracticeLog, error) {
	old, err := s.backend.PracticeLogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, &model.NotFoundError{Collection: model.CollectionPracticeLogs, ID: id}
	}

	l.LoggedBy = loggedBy(ctx, l.LoggedBy)
	updated, err := s.backend.PracticeLogs.Update(ctx, id, l)
	if err != nil {
		return nil, err
	}

	if err := s.RecomputeProgress(ctx, updated.CommandID); err != nil {
		return nil, err
	}
	if old.CommandID != updated.CommandID {
		if err := s.recomputeIfPresent(ctx, old.CommandID); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func (s *Service) PatchPracticeLog(ctx context.Context, id int64, apply func(*model.PracticeLog) error) (*model.PracticeLog, error) {
	return patch(ctx, model.CollectionPracticeLogs, id, s.backend.PracticeLogs.GetByID, apply, s.UpdatePracticeLog)
}

// DeletePracticeLog is a no-op for an absent id.
func (s *Service) DeletePracticeLog(ctx context.Context, id int64) error {
	old, err := s.backend.PracticeLogs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return nil
	}
	if err := s.backend.PracticeLogs.Delete(ctx, id); err != nil {
		return err
	}
	return s.recomputeIfPresent(ctx, old.CommandID)
}

func (s *Service) recomputeIfPresent(ctx context.Context, commandID int64) error {
	err := s.RecomputeProgress(ctx, commandID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}
