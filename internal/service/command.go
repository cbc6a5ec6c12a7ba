package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/training"
)

// progressAttempts bounds the read-then-write recompute when another writer
// bumps the command version in between.
const progressAttempts = 2

func (s *Service) AddCommand(ctx context.Context, c *model.Command) (*model.Command, error) {
	if c.Difficulty == "" {
		c.Difficulty = "easy"
	}
	return s.backend.Commands.Create(ctx, c)
}

func (s *Service) GetCommand(ctx context.Context, id int64) (*model.Command, error) {
	c, err := s.backend.Commands.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &model.NotFoundError{Collection: model.CollectionCommands, ID: id}
	}
	return c, nil
}

// CommandByName returns nil when no command has that name.
func (s *Service) CommandByName(ctx context.Context, name string) (*model.Command, error) {
	return s.backend.Commands.GetByName(ctx, name)
}

func (s *Service) ListCommands(ctx context.Context) ([]model.Command, error) {
	return s.backend.Commands.List(ctx)
}

func (s *Service) UpdateCommand(ctx context.Context, id int64, c *model.Command) (*model.Command, error) {
	if c.Difficulty == "" {
		c.Difficulty = "easy"
	}
	return s.backend.Commands.Update(ctx, id, c)
}

// PatchCommand merges the fields set by apply into the stored command.
func (s *Service) PatchCommand(ctx context.Context, id int64, apply func(*model.Command) error) (*model.Command, error) {
	return patch(ctx, model.CollectionCommands, id, s.backend.Commands.GetByID, apply, s.UpdateCommand)
}

// DeleteCommand removes the command and, through the schema, its logs.
func (s *Service) DeleteCommand(ctx context.Context, id int64) error {
	return s.backend.Commands.Delete(ctx, id)
}

// RecomputeProgress rebuilds a command's progress, session count and last
// practiced date from its practice logs.
func (s *Service) RecomputeProgress(ctx context.Context, commandID int64) error {
	for attempt := 1; attempt <= progressAttempts; attempt++ {
		cmd, err := s.backend.Commands.GetByID(ctx, commandID)
		if err != nil {
			return err
		}
		if cmd == nil {
			return &model.NotFoundError{Collection: model.CollectionCommands, ID: commandID}
		}

		logs, err := s.backend.PracticeLogs.ListByCommand(ctx, commandID)
		if err != nil {
			return err
		}

		err = s.backend.Commands.UpdateProgress(ctx, commandID, training.Progress(logs), cmd.Version)
		if errors.Is(err, model.ErrConflict) {
			slog.Warn("command changed during progress recompute", "command_id", commandID, "attempt", attempt)
			continue
		}
		return err
	}
	return fmt.Errorf("recompute progress for command %d: %w", commandID, model.ErrConflict)
}
