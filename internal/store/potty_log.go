package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

type PottyLogStore struct {
	db *sql.DB
}

func NewPottyLogStore(db *sql.DB) *PottyLogStore {
	return &PottyLogStore{db: db}
}

func scanPottyLog(sc scanner) (*model.PottyLog, error) {
	var l model.PottyLog
	var createdAt string

	err := sc.Scan(&l.ID, &l.CommandID, &l.Date, &l.Time, &l.Type, &l.Location, &l.LoggedBy, &l.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	if l.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &l, nil
}

const pottyLogCols = `id, command_id, date, time, type, location, logged_by, notes, created_at`

func (s *PottyLogStore) Create(ctx context.Context, l *model.PottyLog) (*model.PottyLog, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO potty_logs (command_id, date, time, type, location, logged_by, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.CommandID, l.Date, l.Time, l.Type, l.Location, l.LoggedBy, l.Notes, formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionPottyLogs, "insert potty log", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PottyLogStore) GetByID(ctx context.Context, id int64) (*model.PottyLog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pottyLogCols+` FROM potty_logs WHERE id = ?`, id)
	l, err := scanPottyLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get potty log: %w", err)
	}
	return l, nil
}

func (s *PottyLogStore) List(ctx context.Context) ([]model.PottyLog, error) {
	return s.query(ctx, `SELECT `+pottyLogCols+` FROM potty_logs ORDER BY date DESC, time DESC, id DESC`)
}

func (s *PottyLogStore) ListByCommand(ctx context.Context, commandID int64) ([]model.PottyLog, error) {
	return s.query(ctx,
		`SELECT `+pottyLogCols+` FROM potty_logs WHERE command_id = ? ORDER BY date DESC, time DESC, id DESC`,
		commandID,
	)
}

func (s *PottyLogStore) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.PottyLog, error) {
	return s.query(ctx,
		`SELECT `+pottyLogCols+` FROM potty_logs WHERE created_at >= ? AND created_at <= ? ORDER BY created_at DESC, id DESC`,
		formatTimestamp(from), formatTimestamp(to),
	)
}

func (s *PottyLogStore) query(ctx context.Context, q string, args ...any) ([]model.PottyLog, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list potty logs: %w", err)
	}
	defer rows.Close()

	var logs []model.PottyLog
	for rows.Next() {
		l, err := scanPottyLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan potty log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (s *PottyLogStore) Update(ctx context.Context, id int64, l *model.PottyLog) (*model.PottyLog, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE potty_logs SET command_id = ?, date = ?, time = ?, type = ?, location = ?, logged_by = ?, notes = ? WHERE id = ?`,
		l.CommandID, l.Date, l.Time, l.Type, l.Location, l.LoggedBy, l.Notes, id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionPottyLogs, "update potty log", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionPottyLogs, ID: id}
	}
	return s.GetByID(ctx, id)
}

func (s *PottyLogStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM potty_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete potty log: %w", err)
	}
	return nil
}

func (s *PottyLogStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionPottyLogs)
}
