package service

import (
	"context"
	"fmt"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/recurrence"
)

func (s *Service) AddAppointment(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	if err := applyNextDue(a); err != nil {
		return nil, err
	}
	return s.backend.Appointments.Create(ctx, a)
}

func (s *Service) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	return s.backend.Appointments.List(ctx)
}

// ListUpcomingAppointments returns open appointments from today on.
func (s *Service) ListUpcomingAppointments(ctx context.Context) ([]model.Appointment, error) {
	return s.backend.Appointments.ListUpcoming(ctx, s.today())
}

func (s *Service) UpdateAppointment(ctx context.Context, id int64, a *model.Appointment) (*model.Appointment, error) {
	if err := applyNextDue(a); err != nil {
		return nil, err
	}
	return s.backend.Appointments.Update(ctx, id, a)
}

// PatchAppointment merges the fields set by apply into the stored
// appointment. The next due date is recomputed from the merged record.
func (s *Service) PatchAppointment(ctx context.Context, id int64, apply func(*model.Appointment) error) (*model.Appointment, error) {
	return patch(ctx, model.CollectionAppointments, id, s.backend.Appointments.GetByID, apply, s.UpdateAppointment)
}

// CompleteAppointment marks an appointment done. For a recurring one it also
// books the follow-up on the stored next due date and returns it.
func (s *Service) CompleteAppointment(ctx context.Context, id int64) (*model.Appointment, *model.Appointment, error) {
	existing, err := s.backend.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if existing == nil {
		return nil, nil, &model.NotFoundError{Collection: model.CollectionAppointments, ID: id}
	}
	if existing.Completed {
		return existing, nil, nil
	}

	done := *existing
	done.Completed = true
	completed, err := s.backend.Appointments.Update(ctx, id, &done)
	if err != nil {
		return nil, nil, err
	}
	if !existing.Recurring || existing.NextDueDate == nil {
		return completed, nil, nil
	}

	next := *existing
	next.ID = 0
	next.Date = *existing.NextDueDate
	next.Documents = nil
	next.NextDueDate = nil
	followUp, err := s.AddAppointment(ctx, &next)
	if err != nil {
		return nil, nil, fmt.Errorf("book follow-up appointment: %w", err)
	}
	return completed, followUp, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	return s.backend.Appointments.Delete(ctx, id)
}

// applyNextDue stores the next due date once per write for recurring
// appointments and clears it otherwise.
func applyNextDue(a *model.Appointment) error {
	if !a.Recurring {
		a.NextDueDate = nil
		return nil
	}
	typ := a.RecurringType
	if typ == "" {
		typ = a.Type
	}
	next, err := recurrence.NextDueDate(a.Date, typ)
	if err != nil {
		return &model.WriteError{Collection: model.CollectionAppointments, Field: "date", Reason: "must be a YYYY-MM-DD date"}
	}
	a.NextDueDate = &next
	return nil
}
