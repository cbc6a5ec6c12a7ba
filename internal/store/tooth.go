package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
)

type ToothStore struct {
	db *sql.DB
}

func NewToothStore(db *sql.DB) *ToothStore {
	return &ToothStore{db: db}
}

func scanToothLog(sc scanner) (*model.ToothLog, error) {
	var t model.ToothLog
	var createdAt string

	if err := sc.Scan(&t.ID, &t.ToothType, &t.Date, &t.Notes, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if t.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

const toothCols = `id, tooth_type, date, notes, created_at`

func (s *ToothStore) Create(ctx context.Context, t *model.ToothLog) (*model.ToothLog, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO tooth_logs (tooth_type, date, notes, created_at) VALUES (?, ?, ?, ?)`,
		t.ToothType, t.Date, t.Notes, formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionToothLogs, "insert tooth log", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ToothStore) GetByID(ctx context.Context, id int64) (*model.ToothLog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+toothCols+` FROM tooth_logs WHERE id = ?`, id)
	t, err := scanToothLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tooth log: %w", err)
	}
	return t, nil
}

func (s *ToothStore) List(ctx context.Context) ([]model.ToothLog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+toothCols+` FROM tooth_logs ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tooth logs: %w", err)
	}
	defer rows.Close()

	var logs []model.ToothLog
	for rows.Next() {
		t, err := scanToothLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tooth log: %w", err)
		}
		logs = append(logs, *t)
	}
	return logs, rows.Err()
}

func (s *ToothStore) Update(ctx context.Context, id int64, t *model.ToothLog) (*model.ToothLog, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE tooth_logs SET tooth_type = ?, date = ?, notes = ? WHERE id = ?`,
		t.ToothType, t.Date, t.Notes, id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionToothLogs, "update tooth log", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionToothLogs, ID: id}
	}
	return s.GetByID(ctx, id)
}

func (s *ToothStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tooth_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tooth log: %w", err)
	}
	return nil
}

func (s *ToothStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionToothLogs)
}
