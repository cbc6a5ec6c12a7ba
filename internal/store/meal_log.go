package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
)

type MealLogStore struct {
	db *sql.DB
}

func NewMealLogStore(db *sql.DB) *MealLogStore {
	return &MealLogStore{db: db}
}

func scanMealLog(sc scanner) (*model.MealLog, error) {
	var l model.MealLog
	var createdAt string

	err := sc.Scan(&l.ID, &l.CommandID, &l.Date, &l.Time, &l.MealType, &l.Amount, &l.Food, &l.LoggedBy, &l.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	if l.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &l, nil
}

const mealLogCols = `id, command_id, date, time, meal_type, amount, food, logged_by, notes, created_at`

func (s *MealLogStore) Create(ctx context.Context, l *model.MealLog) (*model.MealLog, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO meal_logs (command_id, date, time, meal_type, amount, food, logged_by, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.CommandID, l.Date, l.Time, l.MealType, l.Amount, l.Food, l.LoggedBy, l.Notes, formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionMealLogs, "insert meal log", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *MealLogStore) GetByID(ctx context.Context, id int64) (*model.MealLog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mealLogCols+` FROM meal_logs WHERE id = ?`, id)
	l, err := scanMealLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal log: %w", err)
	}
	return l, nil
}

func (s *MealLogStore) List(ctx context.Context) ([]model.MealLog, error) {
	return s.query(ctx, `SELECT `+mealLogCols+` FROM meal_logs ORDER BY date DESC, time DESC, id DESC`)
}

func (s *MealLogStore) ListByCommand(ctx context.Context, commandID int64) ([]model.MealLog, error) {
	return s.query(ctx,
		`SELECT `+mealLogCols+` FROM meal_logs WHERE command_id = ? ORDER BY date DESC, time DESC, id DESC`,
		commandID,
	)
}

func (s *MealLogStore) query(ctx context.Context, q string, args ...any) ([]model.MealLog, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list meal logs: %w", err)
	}
	defer rows.Close()

	var logs []model.MealLog
	for rows.Next() {
		l, err := scanMealLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (s *MealLogStore) Update(ctx context.Context, id int64, l *model.MealLog) (*model.MealLog, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE meal_logs SET command_id = ?, date = ?, time = ?, meal_type = ?, amount = ?, food = ?, logged_by = ?, notes = ? WHERE id = ?`,
		l.CommandID, l.Date, l.Time, l.MealType, l.Amount, l.Food, l.LoggedBy, l.Notes, id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionMealLogs, "update meal log", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionMealLogs, ID: id}
	}
	return s.GetByID(ctx, id)
}

func (s *MealLogStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM meal_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meal log: %w", err)
	}
	return nil
}

func (s *MealLogStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionMealLogs)
}
