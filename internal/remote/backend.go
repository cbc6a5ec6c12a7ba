package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
)

const (
	recentOrder  = "date.desc,time.desc,id.desc"
	createdOrder = "created_at.desc,id.desc"
)

func timeFilter(op string, t time.Time) string {
	return op + "." + t.UTC().Format(time.RFC3339Nano)
}

// NewBackend wires one remote table per collection.
func NewBackend(c *Client) service.Backend {
	commands := &commandTable{newTable(c, model.CollectionCommands, "age_week.asc,name.asc", commandToRow, commandFromRow)}
	practice := &practiceLogTable{newTable(c, model.CollectionPracticeLogs, recentOrder, practiceLogToRow, practiceLogFromRow)}
	potty := &pottyLogTable{newTable(c, model.CollectionPottyLogs, recentOrder, pottyLogToRow, pottyLogFromRow)}
	meals := newTable(c, model.CollectionMealLogs, recentOrder, mealLogToRow, mealLogFromRow)
	naps := newTable(c, model.CollectionNapLogs, "date.desc,start_time.desc,id.desc", napLogToRow, napLogFromRow)
	milestones := newTable(c, model.CollectionMilestones, "target_week.asc,id.asc", milestoneToRow, milestoneFromRow)
	appointments := &appointmentTable{newTable(c, model.CollectionAppointments, "date.asc,time.asc,id.asc", appointmentToRow, appointmentFromRow)}
	weights := newTable(c, model.CollectionWeightEntries, "date.asc,id.asc", weightToRow, weightFromRow)
	teeth := newTable(c, model.CollectionToothLogs, "date.desc,id.desc", toothToRow, toothFromRow)
	grooming := newTable(c, model.CollectionGroomingLogs, "date.desc,id.desc", groomingToRow, groomingFromRow)
	fears := newTable(c, model.CollectionFearLogs, "date.desc,id.desc", fearToRow, fearFromRow)
	analytics := &analyticsTable{newTable(c, model.CollectionAnalytics, createdOrder, snapshotToRow, snapshotFromRow)}

	return service.Backend{
		Commands:     commands,
		PracticeLogs: practice,
		PottyLogs:    potty,
		MealLogs:     meals,
		NapLogs:      naps,
		Milestones:   milestones,
		Appointments: appointments,
		Weights:      weights,
		Teeth:        teeth,
		Grooming:     grooming,
		Fears:        fears,
		Analytics:    analytics,
		Clearer: &clearer{
			commands: commands,
			// children before the commands they reference
			tables: []interface{ clear(context.Context) error }{
				practice, potty, meals, naps, milestones, appointments,
				weights, teeth, grooming, fears, analytics,
			},
		},
	}
}

type commandTable struct {
	*Table[model.Command, commandRow]
}

// Create inserts a command with zeroed progress at version 1.
func (t *commandTable) Create(ctx context.Context, c *model.Command) (*model.Command, error) {
	in := *c
	in.Progress, in.SessionsCount, in.LastPracticed, in.Version = 0, 0, nil, 1
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return t.insert(ctx, commandToRow(&in))
}

func (t *commandTable) GetByName(ctx context.Context, name string) (*model.Command, error) {
	list, err := t.query(ctx, url.Values{"name": {eq(name)}, "limit": {"1"}})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// Update rewrites the editable fields. The version bump is guarded by the
// version that was read, since PATCH cannot increment in place.
func (t *commandTable) Update(ctx context.Context, id int64, c *model.Command) (*model.Command, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	current, err := t.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &model.NotFoundError{Collection: model.CollectionCommands, ID: id}
	}
	cols := map[string]any{
		"name":       c.Name,
		"age_week":   c.AgeWeek,
		"difficulty": c.Difficulty,
		"is_custom":  c.IsCustom,
		"version":    current.Version + 1,
	}
	updated, err := t.patch(ctx, id, url.Values{"id": {eq(id)}, "version": {eq(current.Version)}}, cols)
	var nf *model.NotFoundError
	if errors.As(err, &nf) {
		return nil, fmt.Errorf("update command %d: %w", id, model.ErrConflict)
	}
	return updated, err
}

func (t *commandTable) UpdateProgress(ctx context.Context, id int64, p model.CommandProgress, expectedVersion int64) error {
	cols := map[string]any{
		"progress":       p.Progress,
		"sessions_count": p.SessionsCount,
		"last_practiced": p.LastPracticed,
		"version":        expectedVersion + 1,
	}
	_, err := t.patch(ctx, id, url.Values{"id": {eq(id)}, "version": {eq(expectedVersion)}}, cols)
	var nf *model.NotFoundError
	if !errors.As(err, &nf) {
		return err
	}
	existing, gerr := t.GetByID(ctx, id)
	if gerr != nil {
		return gerr
	}
	if existing == nil {
		return err
	}
	return model.ErrConflict
}

type practiceLogTable struct {
	*Table[model.PracticeLog, practiceLogRow]
}

func (t *practiceLogTable) ListByCommand(ctx context.Context, commandID int64) ([]model.PracticeLog, error) {
	return t.query(ctx, url.Values{"command_id": {eq(commandID)}})
}

func (t *practiceLogTable) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.PracticeLog, error) {
	return t.query(ctx, url.Values{
		"created_at": {timeFilter("gte", from), timeFilter("lte", to)},
		"order":      {createdOrder},
	})
}

type pottyLogTable struct {
	*Table[model.PottyLog, pottyLogRow]
}

func (t *pottyLogTable) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.PottyLog, error) {
	return t.query(ctx, url.Values{
		"created_at": {timeFilter("gte", from), timeFilter("lte", to)},
		"order":      {createdOrder},
	})
}

type appointmentTable struct {
	*Table[model.Appointment, appointmentRow]
}

func (t *appointmentTable) ListUpcoming(ctx context.Context, fromDate string) ([]model.Appointment, error) {
	return t.query(ctx, url.Values{
		"completed": {"eq.false"},
		"date":      {"gte." + fromDate},
	})
}

type analyticsTable struct {
	*Table[model.AnalyticsSnapshot, snapshotRow]
}

func (t *analyticsTable) Create(ctx context.Context, p model.WeeklyProgress) (*model.AnalyticsSnapshot, error) {
	return t.insert(ctx, snapshotToRow(&model.AnalyticsSnapshot{WeeklyProgress: p}))
}

type clearer struct {
	commands *commandTable
	tables   []interface{ clear(context.Context) error }
}

// ClearAll empties every table and re-seeds the potty command.
func (c *clearer) ClearAll(ctx context.Context) error {
	for _, t := range c.tables {
		if err := t.clear(ctx); err != nil {
			return err
		}
	}
	if err := c.commands.clear(ctx); err != nil {
		return err
	}
	_, err := c.commands.Create(ctx, &model.Command{Name: model.PottyCommandName, AgeWeek: 8, Difficulty: "medium"})
	if err != nil {
		return fmt.Errorf("seed potty command: %w", err)
	}
	return nil
}
