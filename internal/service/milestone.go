package service

import (
	"context"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/training"
)

func (s *Service) AddMilestone(ctx context.Context, m *model.Milestone) (*model.Milestone, error) {
	if m.Category == "" {
		m.Category = training.CategorizeMilestone(m.Title)
	}
	if m.Importance == "" {
		m.Importance = "medium"
	}
	if !m.Completed {
		m.CompletedDate = nil
	} else if m.CompletedDate == nil {
		today := s.today()
		m.CompletedDate = &today
	}
	return s.backend.Milestones.Create(ctx, m)
}

func (s *Service) ListMilestones(ctx context.Context) ([]model.Milestone, error) {
	return s.backend.Milestones.List(ctx)
}

// UpdateMilestone stamps completed_date with today on an open->done
// transition and clears it when the milestone is reopened.
func (s *Service) UpdateMilestone(ctx context.Context, id int64, m *model.Milestone) (*model.Milestone, error) {
	existing, err := s.backend.Milestones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &model.NotFoundError{Collection: model.CollectionMilestones, ID: id}
	}

	switch {
	case !m.Completed:
		m.CompletedDate = nil
	case m.CompletedDate != nil:
	case existing.Completed:
		m.CompletedDate = existing.CompletedDate
	default:
		today := s.today()
		m.CompletedDate = &today
	}
	if m.Importance == "" {
		m.Importance = existing.Importance
	}
	return s.backend.Milestones.Update(ctx, id, m)
}

// PatchMilestone merges the fields set by apply into the stored milestone.
// Completion dates follow the same rules as UpdateMilestone.
func (s *Service) PatchMilestone(ctx context.Context, id int64, apply func(*model.Milestone) error) (*model.Milestone, error) {
	return patch(ctx, model.CollectionMilestones, id, s.backend.Milestones.GetByID, apply, s.UpdateMilestone)
}

// CompleteMilestone toggles completion without touching other fields.
func (s *Service) CompleteMilestone(ctx context.Context, id int64, done bool) (*model.Milestone, error) {
	existing, err := s.backend.Milestones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &model.NotFoundError{Collection: model.CollectionMilestones, ID: id}
	}

	m := *existing
	m.Completed = done
	if done != existing.Completed {
		m.CompletedDate = nil
	}
	return s.UpdateMilestone(ctx, id, &m)
}

func (s *Service) DeleteMilestone(ctx context.Context, id int64) error {
	return s.backend.Milestones.Delete(ctx, id)
}
