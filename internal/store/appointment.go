package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
)

type AppointmentStore struct {
	db *sql.DB
}

func NewAppointmentStore(db *sql.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

func scanAppointment(sc scanner) (*model.Appointment, error) {
	var a model.Appointment
	var reminder, recurring, completed int
	var nextDue sql.NullString
	var documents, createdAt string

	err := sc.Scan(
		&a.ID, &a.Title, &a.Type, &a.Date, &a.Time, &a.Location, &a.Notes, &reminder, &recurring,
		&a.RecurringType, &nextDue, &completed, &documents, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.Reminder = reminder != 0
	a.Recurring = recurring != 0
	a.Completed = completed != 0
	a.NextDueDate = stringPtr(nextDue)
	if err := json.Unmarshal([]byte(documents), &a.Documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if a.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

const appointmentCols = `id, title, type, date, time, location, notes, reminder, recurring, recurring_type, next_due_date, completed, documents, created_at`

func encodeDocuments(docs []string) (string, error) {
	if docs == nil {
		docs = []string{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("encode documents: %w", err)
	}
	return string(data), nil
}

func (s *AppointmentStore) Create(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	docs, err := encodeDocuments(a.Documents)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (title, type, date, time, location, notes, reminder, recurring, recurring_type, next_due_date, completed, documents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Title, a.Type, a.Date, a.Time, a.Location, a.Notes, boolToInt(a.Reminder), boolToInt(a.Recurring),
		a.RecurringType, nullString(a.NextDueDate), boolToInt(a.Completed), docs, formatTimestamp(now()),
	)
	if err != nil {
		return nil, writeErr(model.CollectionAppointments, "insert appointment", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *AppointmentStore) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// List returns appointments in calendar order.
func (s *AppointmentStore) List(ctx context.Context) ([]model.Appointment, error) {
	return s.query(ctx, `SELECT `+appointmentCols+` FROM appointments ORDER BY date ASC, time ASC, id ASC`)
}

// ListUpcoming returns incomplete appointments on or after the given date.
func (s *AppointmentStore) ListUpcoming(ctx context.Context, fromDate string) ([]model.Appointment, error) {
	return s.query(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE completed = 0 AND date >= ? ORDER BY date ASC, time ASC, id ASC`,
		fromDate,
	)
}

func (s *AppointmentStore) query(ctx context.Context, q string, args ...any) ([]model.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, *a)
	}
	return appts, rows.Err()
}

func (s *AppointmentStore) Update(ctx context.Context, id int64, a *model.Appointment) (*model.Appointment, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	docs, err := encodeDocuments(a.Documents)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET title = ?, type = ?, date = ?, time = ?, location = ?, notes = ?, reminder = ?, recurring = ?,
		 recurring_type = ?, next_due_date = ?, completed = ?, documents = ? WHERE id = ?`,
		a.Title, a.Type, a.Date, a.Time, a.Location, a.Notes, boolToInt(a.Reminder), boolToInt(a.Recurring),
		a.RecurringType, nullString(a.NextDueDate), boolToInt(a.Completed), docs, id,
	)
	if err != nil {
		return nil, writeErr(model.CollectionAppointments, "update appointment", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &model.NotFoundError{Collection: model.CollectionAppointments, ID: id}
	}
	return s.GetByID(ctx, id)
}

func (s *AppointmentStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

func (s *AppointmentStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, model.CollectionAppointments)
}
