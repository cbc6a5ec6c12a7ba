package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
)

type AnalyticsStore struct {
	db *sql.DB
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

func scanSnapshot(sc scanner) (*model.AnalyticsSnapshot, error) {
	var a model.AnalyticsSnapshot
	var createdAt string

	err := sc.Scan(&a.ID, &a.WeekStart, &a.TrainingSessions, &a.PottyLogs, &a.SuccessRate, &createdAt)
	if err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

const snapshotCols = `id, week_start, training_sessions, potty_logs, success_rate, created_at`

func (s *AnalyticsStore) Create(ctx context.Context, p model.WeeklyProgress) (*model.AnalyticsSnapshot, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO analytics_snapshots (week_start, training_sessions, potty_logs, success_rate, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.WeekStart, p.TrainingSessions, p.PottyLogs, p.SuccessRate, formatTimestamp(now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert analytics snapshot: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotCols+` FROM analytics_snapshots WHERE id = ?`, id)
	a, err := scanSnapshot(row)
	if err != nil {
		return nil, fmt.Errorf("get analytics snapshot: %w", err)
	}
	return a, nil
}

// List returns snapshots newest first.
func (s *AnalyticsStore) List(ctx context.Context) ([]model.AnalyticsSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+snapshotCols+` FROM analytics_snapshots ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list analytics snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []model.AnalyticsSnapshot
	for rows.Next() {
		a, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analytics snapshot: %w", err)
		}
		snaps = append(snaps, *a)
	}
	return snaps, rows.Err()
}

func (s *AnalyticsStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analytics_snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete analytics snapshot: %w", err)
	}
	return nil
}

func (s *AnalyticsStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionAnalytics)
}
