package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
)

type MilestoneStore struct {
	db *sql.DB
}

func NewMilestoneStore(db *sql.DB) *MilestoneStore {
	return &MilestoneStore{db: db}
}

func scanMilestone(sc scanner) (*model.Milestone, error) {
	var m model.Milestone
	var completed int
	var completedDate sql.NullString
	var createdAt string

	err := sc.Scan(
		&m.ID, &m.Title, &m.Description, &m.Category, &m.TargetWeek, &completed,
		&completedDate, &m.PhotoRef, &m.Notes, &m.Importance, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	m.Completed = completed != 0
	m.CompletedDate = stringPtr(completedDate)
	if m.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

const milestoneCols = `id, title, description, category, target_week, completed, completed_date, photo_ref, notes, importance, created_at`

func (s *MilestoneStore) Create(ctx context.Context, m *model.Milestone) (*model.Milestone, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO milestones (title, description, category, target_week, completed, completed_date, photo_ref, notes, importance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Title, m.Description, m.Category, m.TargetWeek, boolToInt(m.Completed), nullString(m.CompletedDate),
		m.PhotoRef, m.Notes, m.Importance, formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionMilestones, "insert milestone", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *MilestoneStore) GetByID(ctx context.Context, id int64) (*model.Milestone, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+milestoneCols+` FROM milestones WHERE id = ?`, id)
	m, err := scanMilestone(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	return m, nil
}

// List returns milestones in the order a puppy should reach them.
func (s *MilestoneStore) List(ctx context.Context) ([]model.Milestone, error) {
	return s.query(ctx, `SELECT `+milestoneCols+` FROM milestones ORDER BY target_week ASC, id ASC`)
}

func (s *MilestoneStore) ListByCategory(ctx context.Context, category string) ([]model.Milestone, error) {
	return s.query(ctx,
		`SELECT `+milestoneCols+` FROM milestones WHERE category = ? ORDER BY target_week ASC, id ASC`,
		category,
	)
}

func (s *MilestoneStore) query(ctx context.Context, q string, args ...any) ([]model.Milestone, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		milestones = append(milestones, *m)
	}
	return milestones, rows.Err()
}

func (s *MilestoneStore) Update(ctx context.Context, id int64, m *model.Milestone) (*model.Milestone, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE milestones SET title = ?, description = ?, category = ?, target_week = ?, completed = ?, completed_date = ?,
		 photo_ref = ?, notes = ?, importance = ? WHERE id = ?`,
		m.Title, m.Description, m.Category, m.TargetWeek, boolToInt(m.Completed), nullString(m.CompletedDate),
		m.PhotoRef, m.Notes, m.Importance, id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionMilestones, "update milestone", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionMilestones, ID: id}
	}
	return s.GetByID(ctx, id)
}

func (s *MilestoneStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM milestones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete milestone: %w", err)
	}
	return nil
}

func (s *MilestoneStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionMilestones)
}
