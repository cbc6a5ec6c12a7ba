package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
)

type FearStore struct {
	db *sql.DB
}

func NewFearStore(db *sql.DB) *FearStore {
	return &FearStore{db: db}
}

func scanFearLog(sc scanner) (*model.FearLog, error) {
	var f model.FearLog
	var createdAt string

	if err := sc.Scan(&f.ID, &f.Trigger, &f.Intensity, &f.Response, &f.Date, &f.Notes, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if f.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// TRIGGER is reserved in SQLite, hence fear_trigger.
const fearCols = `id, fear_trigger, intensity, response, date, notes, created_at`

func (s *FearStore) Create(ctx context.Context, f *model.FearLog) (*model.FearLog, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO fear_logs (fear_trigger, intensity, response, date, notes, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.Trigger, f.Intensity, f.Response, f.Date, f.Notes, formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionFearLogs, "insert fear log", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *FearStore) GetByID(ctx context.Context, id int64) (*model.FearLog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+fearCols+` FROM fear_logs WHERE id = ?`, id)
	f, err := scanFearLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fear log: %w", err)
	}
	return f, nil
}

func (s *FearStore) List(ctx context.Context) ([]model.FearLog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+fearCols+` FROM fear_logs ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list fear logs: %w", err)
	}
	defer rows.Close()

	var logs []model.FearLog
	for rows.Next() {
		f, err := scanFearLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fear log: %w", err)
		}
		logs = append(logs, *f)
	}
	return logs, rows.Err()
}

func (s *FearStore) Update(ctx context.Context, id int64, f *model.FearLog) (*model.FearLog, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE fear_logs SET fear_trigger = ?, intensity = ?, response = ?, date = ?, notes = ? WHERE id = ?`,
		f.Trigger, f.Intensity, f.Response, f.Date, f.Notes, id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionFearLogs, "update fear log", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionFearLogs, ID: id}
	}
	return s.GetByID(ctx, id)
}

func (s *FearStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM fear_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete fear log: %w", err)
	}
	return nil
}

func (s *FearStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionFearLogs)
}
