package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

type PracticeLogStore struct {
	db *sql.DB
}

func NewPracticeLogStore(db *sql.DB) *PracticeLogStore {
	return &PracticeLogStore{db: db}
}

func scanPracticeLog(sc scanner) (*model.PracticeLog, error) {
	var l model.PracticeLog
	var attempts, successes, reliability sql.NullInt64
	var success int
	var createdAt string

	err := sc.Scan(
		&l.ID, &l.CommandID, &l.Date, &l.Time, &attempts, &successes, &l.Distractions,
		&reliability, &l.Notes, &l.LoggedBy, &success, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	l.Attempts = intPtr(attempts)
	l.Successes = intPtr(successes)
	l.Reliability = intPtr(reliability)
	l.Success = success != 0
	if l.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &l, nil
}

const practiceLogCols = `id, command_id, date, time, attempts, successes, distractions, reliability, notes, logged_by, success, created_at`

func (s *PracticeLogStore) Create(ctx context.Context, l *model.PracticeLog) (*model.PracticeLog, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO practice_logs (command_id, date, time, attempts, successes, distractions, reliability, notes, logged_by, success, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.CommandID, l.Date, l.Time, nullInt(l.Attempts), nullInt(l.Successes), l.Distractions,
		nullInt(l.Reliability), l.Notes, l.LoggedBy, boolToInt(l.Success), formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionPracticeLogs, "insert practice log", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PracticeLogStore) GetByID(ctx context.Context, id int64) (*model.PracticeLog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+practiceLogCols+` FROM practice_logs WHERE id = ?`, id)
	l, err := scanPracticeLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get practice log: %w", err)
	}
	return l, nil
}

// List returns every practice log, most recent first.
func (s *PracticeLogStore) List(ctx context.Context) ([]model.PracticeLog, error) {
	return s.query(ctx, `SELECT `+practiceLogCols+` FROM practice_logs ORDER BY date DESC, time DESC, id DESC`)
}

// ListByCommand returns a command's practice logs, most recent first.
func (s *PracticeLogStore) ListByCommand(ctx context.Context, commandID int64) ([]model.PracticeLog, error) {
	return s.query(ctx,
		`SELECT `+practiceLogCols+` FROM practice_logs WHERE command_id = ? ORDER BY date DESC, time DESC, id DESC`,
		commandID,
	)
}

// ListCreatedBetween returns logs whose creation time falls in [from, to].
func (s *PracticeLogStore) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.PracticeLog, error) {
	return s.query(ctx,
		`SELECT `+practiceLogCols+` FROM practice_logs WHERE created_at >= ? AND created_at <= ? ORDER BY created_at DESC, id DESC`,
		formatTimestamp(from), formatTimestamp(to),
	)
}

func (s *PracticeLogStore) query(ctx context.Context, q string, args ...any) ([]model.PracticeLog, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list practice logs: %w", err)
	}
	defer rows.Close()

	var logs []model.PracticeLog
	for rows.Next() {
		l, err := scanPracticeLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan practice log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (s *PracticeLogStore) Update(ctx context.Context, id int64, l *model.PracticeLog) (*model.PracticeLog, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE practice_logs SET command_id = ?, date = ?, time = ?, attempts = ?, successes = ?, distractions = ?,
		 reliability = ?, notes = ?, logged_by = ?, success = ? WHERE id = ?`,
		l.CommandID, l.Date, l.Time, nullInt(l.Attempts), nullInt(l.Successes), l.Distractions,
		nullInt(l.Reliability), l.Notes, l.LoggedBy, boolToInt(l.Success), id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionPracticeLogs, "update practice log", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionPracticeLogs, ID: id}
	}
	return s.GetByID(ctx, id)
}

func (s *PracticeLogStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM practice_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete practice log: %w", err)
	}
	return nil
}

func (s *PracticeLogStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionPracticeLogs)
}
