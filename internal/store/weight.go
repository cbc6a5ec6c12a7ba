package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
)

type WeightStore struct {
	db *sql.DB
}

func NewWeightStore(db *sql.DB) *WeightStore {
	return &WeightStore{db: db}
}

func scanWeightEntry(sc scanner) (*model.WeightEntry, error) {
	var w model.WeightEntry
	var createdAt string

	if err := sc.Scan(&w.ID, &w.Weight, &w.Unit, &w.Week, &w.Date, &w.Notes, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if w.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &w, nil
}

const weightCols = `id, weight, unit, week, date, notes, created_at`

func (s *WeightStore) Create(ctx context.Context, w *model.WeightEntry) (*model.WeightEntry, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO weight_entries (weight, unit, week, date, notes, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		w.Weight, w.Unit, w.Week, w.Date, w.Notes, formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionWeightEntries, "insert weight entry", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *WeightStore) GetByID(ctx context.Context, id int64) (*model.WeightEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+weightCols+` FROM weight_entries WHERE id = ?`, id)
	w, err := scanWeightEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get weight entry: %w", err)
	}
	return w, nil
}

// List returns the growth curve oldest first.
func (s *WeightStore) List(ctx context.Context) ([]model.WeightEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+weightCols+` FROM weight_entries ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list weight entries: %w", err)
	}
	defer rows.Close()

	var entries []model.WeightEntry
	for rows.Next() {
		w, err := scanWeightEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weight entry: %w", err)
		}
		entries = append(entries, *w)
	}
	return entries, rows.Err()
}

func (s *WeightStore) Update(ctx context.Context, id int64, w *model.WeightEntry) (*model.WeightEntry, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE weight_entries SET weight = ?, unit = ?, week = ?, date = ?, notes = ? WHERE id = ?`,
		w.Weight, w.Unit, w.Week, w.Date, w.Notes, id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionWeightEntries, "update weight entry", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionWeightEntries, ID: id}
	}
	return s.GetByID(ctx, id)
}

func (s *WeightStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM weight_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete weight entry: %w", err)
	}
	return nil
}

func (s *WeightStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionWeightEntries)
}
