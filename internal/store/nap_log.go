package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
)

type NapLogStore struct {
	db *sql.DB
}

func NewNapLogStore(db *sql.DB) *NapLogStore {
	return &NapLogStore{db: db}
}

func scanNapLog(sc scanner) (*model.NapLog, error) {
	var l model.NapLog
	var endTime sql.NullString
	var createdAt string

	err := sc.Scan(&l.ID, &l.CommandID, &l.Date, &l.StartTime, &endTime, &l.Location, &l.LoggedBy, &l.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	l.EndTime = stringPtr(endTime)
	if l.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &l, nil
}

const napLogCols = `id, command_id, date, start_time, end_time, location, logged_by, notes, created_at`

func (s *NapLogStore) Create(ctx context.Context, l *model.NapLog) (*model.NapLog, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO nap_logs (command_id, date, start_time, end_time, location, logged_by, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.CommandID, l.Date, l.StartTime, nullString(l.EndTime), l.Location, l.LoggedBy, l.Notes, formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionNapLogs, "insert nap log", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *NapLogStore) GetByID(ctx context.Context, id int64) (*model.NapLog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+napLogCols+` FROM nap_logs WHERE id = ?`, id)
	l, err := scanNapLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get nap log: %w", err)
	}
	return l, nil
}

func (s *NapLogStore) List(ctx context.Context) ([]model.NapLog, error) {
	return s.query(ctx, `SELECT `+napLogCols+` FROM nap_logs ORDER BY date DESC, start_time DESC, id DESC`)
}

func (s *NapLogStore) ListByCommand(ctx context.Context, commandID int64) ([]model.NapLog, error) {
	return s.query(ctx,
		`SELECT `+napLogCols+` FROM nap_logs WHERE command_id = ? ORDER BY date DESC, start_time DESC, id DESC`,
		commandID,
	)
}

func (s *NapLogStore) query(ctx context.Context, q string, args ...any) ([]model.NapLog, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list nap logs: %w", err)
	}
	defer rows.Close()

	var logs []model.NapLog
	for rows.Next() {
		l, err := scanNapLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan nap log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (s *NapLogStore) Update(ctx context.Context, id int64, l *model.NapLog) (*model.NapLog, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE nap_logs SET command_id = ?, date = ?, start_time = ?, end_time = ?, location = ?, logged_by = ?, notes = ? WHERE id = ?`,
		l.CommandID, l.Date, l.StartTime, nullString(l.EndTime), l.Location, l.LoggedBy, l.Notes, id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionNapLogs, "update nap log", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionNapLogs, ID: id}
	}
	return s.GetByID(ctx, id)
}

func (s *NapLogStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM nap_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete nap log: %w", err)
	}
	return nil
}

func (s *NapLogStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionNapLogs)
}
