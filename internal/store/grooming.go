package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
)

type GroomingStore struct {
	db *sql.DB
}

func NewGroomingStore(db *sql.DB) *GroomingStore {
	return &GroomingStore{db: db}
}

func scanGroomingLog(sc scanner) (*model.GroomingLog, error) {
	var g model.GroomingLog
	var createdAt string

	if err := sc.Scan(&g.ID, &g.Activity, &g.DurationMinutes, &g.Tolerance, &g.Date, &g.Notes, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if g.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &g, nil
}

const groomingCols = `id, activity, duration_minutes, tolerance, date, notes, created_at`

func (s *GroomingStore) Create(ctx context.Context, g *model.GroomingLog) (*model.GroomingLog, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO grooming_logs (activity, duration_minutes, tolerance, date, notes, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		g.Activity, g.DurationMinutes, g.Tolerance, g.Date, g.Notes, formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionGroomingLogs, "insert grooming log", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *GroomingStore) GetByID(ctx context.Context, id int64) (*model.GroomingLog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groomingCols+` FROM grooming_logs WHERE id = ?`, id)
	g, err := scanGroomingLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grooming log: %w", err)
	}
	return g, nil
}

func (s *GroomingStore) List(ctx context.Context) ([]model.GroomingLog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+groomingCols+` FROM grooming_logs ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list grooming logs: %w", err)
	}
	defer rows.Close()

	var logs []model.GroomingLog
	for rows.Next() {
		g, err := scanGroomingLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grooming log: %w", err)
		}
		logs = append(logs, *g)
	}
	return logs, rows.Err()
}

func (s *GroomingStore) Update(ctx context.Context, id int64, g *model.GroomingLog) (*model.GroomingLog, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE grooming_logs SET activity = ?, duration_minutes = ?, tolerance = ?, date = ?, notes = ? WHERE id = ?`,
		g.Activity, g.DurationMinutes, g.Tolerance, g.Date, g.Notes, id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionGroomingLogs, "update grooming log", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionGroomingLogs, ID: id}
	}
	return s.GetByID(ctx, id)
}

func (s *GroomingStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM grooming_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete grooming log: %w", err)
	}
	return nil
}

func (s *GroomingStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionGroomingLogs)
}
