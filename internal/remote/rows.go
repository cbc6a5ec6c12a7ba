package remote

import (
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

// Row types mirror the remote tables column for column.

type commandRow struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	AgeWeek       int       `json:"age_week"`
	Difficulty    string    `json:"difficulty"`
	Progress      int       `json:"progress"`
	SessionsCount int       `json:"sessions_count"`
	LastPracticed *string   `json:"last_practiced"`
	IsCustom      bool      `json:"is_custom"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
}

func commandToRow(c *model.Command) commandRow {
	return commandRow{
		ID:            c.ID,
		Name:          c.Name,
		AgeWeek:       c.AgeWeek,
		Difficulty:    c.Difficulty,
		Progress:      c.Progress,
		SessionsCount: c.SessionsCount,
		LastPracticed: c.LastPracticed,
		IsCustom:      c.IsCustom,
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
	}
}

func commandFromRow(r commandRow) model.Command {
	return model.Command{
		ID:            r.ID,
		Name:          r.Name,
		AgeWeek:       r.AgeWeek,
		Difficulty:    r.Difficulty,
		Progress:      r.Progress,
		SessionsCount: r.SessionsCount,
		LastPracticed: r.LastPracticed,
		IsCustom:      r.IsCustom,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
	}
}

type practiceLogRow struct {
	ID           int64     `json:"id"`
	CommandID    int64     `json:"command_id"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Attempts     *int      `json:"attempts"`
	Successes    *int      `json:"successes"`
	Distractions string    `json:"distractions"`
	Reliability  *int      `json:"reliability"`
	Notes        string    `json:"notes"`
	LoggedBy     string    `json:"logged_by"`
	Success      bool      `json:"success"`
	CreatedAt    time.Time `json:"created_at"`
}

func practiceLogToRow(l *model.PracticeLog) practiceLogRow {
	return practiceLogRow{
		ID:           l.ID,
		CommandID:    l.CommandID,
		Date:         l.Date,
		Time:         l.Time,
		Attempts:     l.Attempts,
		Successes:    l.Successes,
		Distractions: l.Distractions,
		Reliability:  l.Reliability,
		Notes:        l.Notes,
		LoggedBy:     l.LoggedBy,
		Success:      l.Success,
		CreatedAt:    l.CreatedAt,
	}
}

func practiceLogFromRow(r practiceLogRow) model.PracticeLog {
	return model.PracticeLog{
		ID:           r.ID,
		CommandID:    r.CommandID,
		Date:         r.Date,
		Time:         r.Time,
		Attempts:     r.Attempts,
		Successes:    r.Successes,
		Distractions: r.Distractions,
		Reliability:  r.Reliability,
		Notes:        r.Notes,
		LoggedBy:     r.LoggedBy,
		Success:      r.Success,
		CreatedAt:    r.CreatedAt,
	}
}

type pottyLogRow struct {
	ID        int64     `json:"id"`
	CommandID int64     `json:"command_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Type      string    `json:"type"`
	Location  string    `json:"location"`
	LoggedBy  string    `json:"logged_by"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func pottyLogToRow(l *model.PottyLog) pottyLogRow {
	return pottyLogRow{
		ID:        l.ID,
		CommandID: l.CommandID,
		Date:      l.Date,
		Time:      l.Time,
		Type:      l.Type,
		Location:  l.Location,
		LoggedBy:  l.LoggedBy,
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
	}
}

func pottyLogFromRow(r pottyLogRow) model.PottyLog {
	return model.PottyLog{
		ID:        r.ID,
		CommandID: r.CommandID,
		Date:      r.Date,
		Time:      r.Time,
		Type:      r.Type,
		Location:  r.Location,
		LoggedBy:  r.LoggedBy,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
}

type mealLogRow struct {
	ID        int64     `json:"id"`
	CommandID int64     `json:"command_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	MealType  string    `json:"meal_type"`
	Amount    string    `json:"amount"`
	Food      string    `json:"food"`
	LoggedBy  string    `json:"logged_by"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func mealLogToRow(l *model.MealLog) mealLogRow {
	return mealLogRow{
		ID:        l.ID,
		CommandID: l.CommandID,
		Date:      l.Date,
		Time:      l.Time,
		MealType:  l.MealType,
		Amount:    l.Amount,
		Food:      l.Food,
		LoggedBy:  l.LoggedBy,
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
	}
}

func mealLogFromRow(r mealLogRow) model.MealLog {
	return model.MealLog{
		ID:        r.ID,
		CommandID: r.CommandID,
		Date:      r.Date,
		Time:      r.Time,
		MealType:  r.MealType,
		Amount:    r.Amount,
		Food:      r.Food,
		LoggedBy:  r.LoggedBy,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
}

type napLogRow struct {
	ID        int64     `json:"id"`
	CommandID int64     `json:"command_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   *string   `json:"end_time"`
	Location  string    `json:"location"`
	LoggedBy  string    `json:"logged_by"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func napLogToRow(l *model.NapLog) napLogRow {
	return napLogRow{
		ID:        l.ID,
		CommandID: l.CommandID,
		Date:      l.Date,
		StartTime: l.StartTime,
		EndTime:   l.EndTime,
		Location:  l.Location,
		LoggedBy:  l.LoggedBy,
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
	}
}

func napLogFromRow(r napLogRow) model.NapLog {
	return model.NapLog{
		ID:        r.ID,
		CommandID: r.CommandID,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Location:  r.Location,
		LoggedBy:  r.LoggedBy,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
}

type milestoneRow struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	TargetWeek    int       `json:"target_week"`
	Completed     bool      `json:"completed"`
	CompletedDate *string   `json:"completed_date"`
	PhotoRef      string    `json:"photo_ref"`
	Notes         string    `json:"notes"`
	Importance    string    `json:"importance"`
	CreatedAt     time.Time `json:"created_at"`
}

func milestoneToRow(m *model.Milestone) milestoneRow {
	return milestoneRow{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Category:      m.Category,
		TargetWeek:    m.TargetWeek,
		Completed:     m.Completed,
		CompletedDate: m.CompletedDate,
		PhotoRef:      m.PhotoRef,
		Notes:         m.Notes,
		Importance:    m.Importance,
		CreatedAt:     m.CreatedAt,
	}
}

func milestoneFromRow(r milestoneRow) model.Milestone {
	return model.Milestone{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		TargetWeek:    r.TargetWeek,
		Completed:     r.Completed,
		CompletedDate: r.CompletedDate,
		PhotoRef:      r.PhotoRef,
		Notes:         r.Notes,
		Importance:    r.Importance,
		CreatedAt:     r.CreatedAt,
	}
}

type appointmentRow struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Location      string    `json:"location"`
	Notes         string    `json:"notes"`
	Reminder      bool      `json:"reminder"`
	Recurring     bool      `json:"recurring"`
	RecurringType string    `json:"recurring_type"`
	NextDueDate   *string   `json:"next_due_date"`
	Completed     bool      `json:"completed"`
	Documents     []string  `json:"documents"`
	CreatedAt     time.Time `json:"created_at"`
}

func appointmentToRow(a *model.Appointment) appointmentRow {
	docs := a.Documents
	if docs == nil {
		docs = []string{}
	}
	return appointmentRow{
		ID:            a.ID,
		Title:         a.Title,
		Type:          a.Type,
		Date:          a.Date,
		Time:          a.Time,
		Location:      a.Location,
		Notes:         a.Notes,
		Reminder:      a.Reminder,
		Recurring:     a.Recurring,
		RecurringType: a.RecurringType,
		NextDueDate:   a.NextDueDate,
		Completed:     a.Completed,
		Documents:     docs,
		CreatedAt:     a.CreatedAt,
	}
}

func appointmentFromRow(r appointmentRow) model.Appointment {
	docs := r.Documents
	if docs == nil {
		docs = []string{}
	}
	return model.Appointment{
		ID:            r.ID,
		Title:         r.Title,
		Type:          r.Type,
		Date:          r.Date,
		Time:          r.Time,
		Location:      r.Location,
		Notes:         r.Notes,
		Reminder:      r.Reminder,
		Recurring:     r.Recurring,
		RecurringType: r.RecurringType,
		NextDueDate:   r.NextDueDate,
		Completed:     r.Completed,
		Documents:     docs,
		CreatedAt:     r.CreatedAt,
	}
}

type weightRow struct {
	ID        int64     `json:"id"`
	Weight    float64   `json:"weight"`
	Unit      string    `json:"unit"`
	Week      int       `json:"week"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func weightToRow(w *model.WeightEntry) weightRow {
	return weightRow{ID: w.ID, Weight: w.Weight, Unit: w.Unit, Week: w.Week, Date: w.Date, Notes: w.Notes, CreatedAt: w.CreatedAt}
}

func weightFromRow(r weightRow) model.WeightEntry {
	return model.WeightEntry{ID: r.ID, Weight: r.Weight, Unit: r.Unit, Week: r.Week, Date: r.Date, Notes: r.Notes, CreatedAt: r.CreatedAt}
}

type toothRow struct {
	ID        int64     `json:"id"`
	ToothType string    `json:"tooth_type"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func toothToRow(t *model.ToothLog) toothRow {
	return toothRow{ID: t.ID, ToothType: t.ToothType, Date: t.Date, Notes: t.Notes, CreatedAt: t.CreatedAt}
}

func toothFromRow(r toothRow) model.ToothLog {
	return model.ToothLog{ID: r.ID, ToothType: r.ToothType, Date: r.Date, Notes: r.Notes, CreatedAt: r.CreatedAt}
}

type groomingRow struct {
	ID              int64     `json:"id"`
	Activity        string    `json:"activity"`
	DurationMinutes int       `json:"duration_minutes"`
	Tolerance       int       `json:"tolerance"`
	Date            string    `json:"date"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

func groomingToRow(g *model.GroomingLog) groomingRow {
	return groomingRow{
		ID:              g.ID,
		Activity:        g.Activity,
		DurationMinutes: g.DurationMinutes,
		Tolerance:       g.Tolerance,
		Date:            g.Date,
		Notes:           g.Notes,
		CreatedAt:       g.CreatedAt,
	}
}

func groomingFromRow(r groomingRow) model.GroomingLog {
	return model.GroomingLog{
		ID:              r.ID,
		Activity:        r.Activity,
		DurationMinutes: r.DurationMinutes,
		Tolerance:       r.Tolerance,
		Date:            r.Date,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
	}
}

type fearRow struct {
	ID        int64     `json:"id"`
	Trigger   string    `json:"fear_trigger"`
	Intensity int       `json:"intensity"`
	Response  string    `json:"response"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func fearToRow(f *model.FearLog) fearRow {
	return fearRow{ID: f.ID, Trigger: f.Trigger, Intensity: f.Intensity, Response: f.Response, Date: f.Date, Notes: f.Notes, CreatedAt: f.CreatedAt}
}

func fearFromRow(r fearRow) model.FearLog {
	return model.FearLog{ID: r.ID, Trigger: r.Trigger, Intensity: r.Intensity, Response: r.Response, Date: r.Date, Notes: r.Notes, CreatedAt: r.CreatedAt}
}

type snapshotRow struct {
	ID               int64     `json:"id"`
	WeekStart        string    `json:"week_start"`
	TrainingSessions int       `json:"training_sessions"`
	PottyLogs        int       `json:"potty_logs"`
	SuccessRate      int       `json:"success_rate"`
	CreatedAt        time.Time `json:"created_at"`
}

func snapshotToRow(s *model.AnalyticsSnapshot) snapshotRow {
	return snapshotRow{
		ID:               s.ID,
		WeekStart:        s.WeekStart,
		TrainingSessions: s.TrainingSessions,
		PottyLogs:        s.PottyLogs,
		SuccessRate:      s.SuccessRate,
		CreatedAt:        s.CreatedAt,
	}
}

func snapshotFromRow(r snapshotRow) model.AnalyticsSnapshot {
	return model.AnalyticsSnapshot{
		ID: r.ID,
		WeeklyProgress: model.WeeklyProgress{
			WeekStart:        r.WeekStart,
			TrainingSessions: r.TrainingSessions,
			PottyLogs:        r.PottyLogs,
			SuccessRate:      r.SuccessRate,
		},
		CreatedAt: r.CreatedAt,
	}
}
