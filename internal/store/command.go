package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
)

type CommandStore struct {
	db *sql.DB
}

func NewCommandStore(db *sql.DB) *CommandStore {
	return &CommandStore{db: db}
}

func scanCommand(sc scanner) (*model.Command, error) {
	var c model.Command
	var lastPracticed sql.NullString
	var isCustom int
	var createdAt string

	err := sc.Scan(
		&c.ID, &c.Name, &c.AgeWeek, &c.Difficulty, &c.Progress, &c.SessionsCount,
		&lastPracticed, &isCustom, &c.Version, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.LastPracticed = stringPtr(lastPracticed)
	c.IsCustom = isCustom != 0
	if c.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

const commandCols = `id, name, age_week, difficulty, progress, sessions_count, last_practiced, is_custom, version, created_at`

// Create inserts a command. Progress and session count always start at zero;
// they are derived from practice logs afterwards.
func (s *CommandStore) Create(ctx context.Context, c *model.Command) (*model.Command, error) {
	in := *c
	in.Progress, in.SessionsCount, in.LastPracticed = 0, 0, nil
	if err := in.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO commands (name, age_week, difficulty, progress, sessions_count, last_practiced, is_custom, version, created_at)
		 VALUES (?, ?, ?, 0, 0, NULL, ?, 1, ?)`,
		in.Name, in.AgeWeek, in.Difficulty, boolToInt(in.IsCustom), formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionCommands, "insert command", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *CommandStore) GetByID(ctx context.Context, id int64) (*model.Command, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commandCols+` FROM commands WHERE id = ?`, id)
	c, err := scanCommand(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get command: %w", err)
	}
	return c, nil
}

// GetByName returns the first command with the given name, or nil.
func (s *CommandStore) GetByName(ctx context.Context, name string) (*model.Command, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commandCols+` FROM commands WHERE name = ? ORDER BY id LIMIT 1`, name)
	c, err := scanCommand(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get command by name: %w", err)
	}
	return c, nil
}

// List returns commands ordered by the puppy age they are introduced at.
func (s *CommandStore) List(ctx context.Context) ([]model.Command, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+commandCols+` FROM commands ORDER BY age_week ASC, name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()

	var commands []model.Command
	for rows.Next() {
		c, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		commands = append(commands, *c)
	}
	return commands, rows.Err()
}

// Update rewrites the editable fields of a command. Derived progress fields
// are left alone; see UpdateProgress.
func (s *CommandStore) Update(ctx context.Context, id int64, c *model.Command) (*model.Command, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE commands SET name = ?, age_week = ?, difficulty = ?, is_custom = ?, version = version + 1 WHERE id = ?`,
		c.Name, c.AgeWeek, c.Difficulty, boolToInt(c.IsCustom), id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionCommands, "update command", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionCommands, ID: id}
	}
	return s.GetByID(ctx, id)
}

// UpdateProgress writes recomputed progress only if the command still has
// the expected version. It returns model.ErrConflict otherwise.
func (s *CommandStore) UpdateProgress(ctx context.Context, id int64, p model.CommandProgress, expectedVersion int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE commands SET progress = ?, sessions_count = ?, last_practiced = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		p.Progress, p.SessionsCount, nullString(p.LastPracticed), id, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update command progress: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		existing, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return &model.NotFoundError{Collection: model.CollectionCommands, ID: id}
		}
		return model.ErrConflict
	}
	return nil
}

func (s *CommandStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM commands WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete command: %w", err)
	}
	return nil
}

func (s *CommandStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionCommands)
}
