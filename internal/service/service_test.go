package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/pawlog/internal/auth"
	"github.com/dukerupert/pawlog/internal/database"
	"github.com/dukerupert/pawlog/internal/model"
)

func setupServiceTest(t *testing.T) (*Service, Backend) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	b := LocalBackend(db)
	return New(b), b
}

func fixedClock(day string) func() time.Time {
	d, _ := time.Parse(model.DateLayout, day)
	return func() time.Time { return d.Add(10 * time.Hour) }
}

func addCommand(t *testing.T, svc *Service, name string) *model.Command {
	t.Helper()
	c, err := svc.AddCommand(context.Background(), &model.Command{Name: name})
	if err != nil {
		t.Fatalf("add command: %v", err)
	}
	return c
}

func TestAddCommandDefaultsDifficulty(t *testing.T) {
	svc, _ := setupServiceTest(t)

	c := addCommand(t, svc, "Sit")
	if c.Difficulty != "easy" {
		t.Errorf("difficulty = %q, want easy", c.Difficulty)
	}
}

func TestProgressRecompute(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()
	cmd := addCommand(t, svc, "Stay")

	var logs []*model.PracticeLog
	for i, success := range []bool{true, false, true} {
		l, err := svc.AddPracticeLog(ctx, &model.PracticeLog{
			CommandID: cmd.ID,
			Date:      []string{"2025-03-01", "2025-03-02", "2025-03-03"}[i],
			Success:   success,
		})
		if err != nil {
			t.Fatalf("add practice log: %v", err)
		}
		logs = append(logs, l)
	}

	got, err := svc.GetCommand(ctx, cmd.ID)
	if err != nil {
		t.Fatalf("get command: %v", err)
	}
	if got.Progress != 67 || got.SessionsCount != 3 {
		t.Errorf("progress = %d, sessions = %d, want 67, 3", got.Progress, got.SessionsCount)
	}
	if got.LastPracticed == nil || *got.LastPracticed != "2025-03-03" {
		t.Errorf("last practiced = %v", got.LastPracticed)
	}

	// Edit the failed session into a success.
	edit := *logs[1]
	edit.Success = true
	if _, err := svc.UpdatePracticeLog(ctx, edit.ID, &edit); err != nil {
		t.Fatalf("update practice log: %v", err)
	}
	got, _ = svc.GetCommand(ctx, cmd.ID)
	if got.Progress != 100 {
		t.Errorf("after edit progress = %d, want 100", got.Progress)
	}

	// Delete the latest session.
	if err := svc.DeletePracticeLog(ctx, logs[2].ID); err != nil {
		t.Fatalf("delete practice log: %v", err)
	}
	got, _ = svc.GetCommand(ctx, cmd.ID)
	if got.SessionsCount != 2 {
		t.Errorf("after delete sessions = %d, want 2", got.SessionsCount)
	}
	if got.LastPracticed == nil || *got.LastPracticed != "2025-03-02" {
		t.Errorf("after delete last practiced = %v", got.LastPracticed)
	}

	// Deleting again is a no-op.
	if err := svc.DeletePracticeLog(ctx, logs[2].ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestProgressMovesWithLog(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()
	sit := addCommand(t, svc, "Sit")
	down := addCommand(t, svc, "Down")

	l, err := svc.AddPracticeLog(ctx, &model.PracticeLog{CommandID: sit.ID, Date: "2025-03-01", Success: true})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	l.CommandID = down.ID
	if _, err := svc.UpdatePracticeLog(ctx, l.ID, l); err != nil {
		t.Fatalf("move log: %v", err)
	}

	gotSit, _ := svc.GetCommand(ctx, sit.ID)
	gotDown, _ := svc.GetCommand(ctx, down.ID)
	if gotSit.SessionsCount != 0 || gotSit.Progress != 0 || gotSit.LastPracticed != nil {
		t.Errorf("sit = %+v, want reset", gotSit)
	}
	if gotDown.SessionsCount != 1 || gotDown.Progress != 100 {
		t.Errorf("down = %+v", gotDown)
	}
}

type conflictingCommands struct {
	CommandRepo
	conflicts int
	calls     int
}

func (c *conflictingCommands) UpdateProgress(ctx context.Context, id int64, p model.CommandProgress, v int64) error {
	c.calls++
	if c.calls <= c.conflicts {
		return model.ErrConflict
	}
	return c.CommandRepo.UpdateProgress(ctx, id, p, v)
}

func TestRecomputeRetriesOnConflict(t *testing.T) {
	_, b := setupServiceTest(t)
	ctx := context.Background()

	wrapped := &conflictingCommands{CommandRepo: b.Commands, conflicts: 1}
	b.Commands = wrapped
	svc := New(b)

	cmd := addCommand(t, svc, "Come")
	if _, err := svc.AddPracticeLog(ctx, &model.PracticeLog{CommandID: cmd.ID, Date: "2025-03-01", Success: true}); err != nil {
		t.Fatalf("add with one conflict: %v", err)
	}
	if wrapped.calls != 2 {
		t.Errorf("update progress calls = %d, want 2", wrapped.calls)
	}

	wrapped.calls, wrapped.conflicts = 0, 5
	err := svc.RecomputeProgress(ctx, cmd.ID)
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict after retries", err)
	}
}

func TestLoggedByFromContext(t *testing.T) {
	svc, _ := setupServiceTest(t)
	cmd := addCommand(t, svc, model.PottyCommandName+" 2")
	ctx := auth.WithUser(context.Background(), "alex")

	l, err := svc.PottyLogs.Add(ctx, &model.PottyLog{CommandID: cmd.ID, Date: "2025-03-01", Type: "pee", Location: "outside"})
	if err != nil {
		t.Fatalf("add potty log: %v", err)
	}
	if l.LoggedBy != "alex" {
		t.Errorf("logged_by = %q, want alex", l.LoggedBy)
	}

	p, err := svc.AddPracticeLog(ctx, &model.PracticeLog{CommandID: cmd.ID, Date: "2025-03-01", LoggedBy: "sam"})
	if err != nil {
		t.Fatalf("add practice log: %v", err)
	}
	if p.LoggedBy != "sam" {
		t.Errorf("logged_by = %q, want explicit sam", p.LoggedBy)
	}

	anon, err := svc.MealLogs.Add(context.Background(), &model.MealLog{CommandID: cmd.ID, Date: "2025-03-01", MealType: "treat"})
	if err != nil {
		t.Fatalf("add meal log: %v", err)
	}
	if anon.LoggedBy != "" {
		t.Errorf("logged_by = %q, want empty", anon.LoggedBy)
	}
}

func TestCollectionGetMissing(t *testing.T) {
	svc, _ := setupServiceTest(t)

	_, err := svc.Weights.Get(context.Background(), 77)
	var nf *model.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if nf.Collection != model.CollectionWeightEntries {
		t.Errorf("collection = %q", nf.Collection)
	}
}

func TestMilestoneTransitions(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()
	svc.SetClock(fixedClock("2025-04-02"))

	m, err := svc.AddMilestone(ctx, &model.Milestone{Title: "First bath", CompletedDate: strPtr("2025-01-01")})
	if err != nil {
		t.Fatalf("add milestone: %v", err)
	}
	if m.CompletedDate != nil {
		t.Errorf("open milestone stored completed_date %q", *m.CompletedDate)
	}
	if m.Category != "grooming" || m.Importance != "medium" {
		t.Errorf("category = %q, importance = %q", m.Category, m.Importance)
	}

	done, err := svc.CompleteMilestone(ctx, m.ID, true)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.CompletedDate == nil || *done.CompletedDate != "2025-04-02" {
		t.Errorf("completed_date = %v, want today", done.CompletedDate)
	}

	// Completing again keeps the original date.
	svc.SetClock(fixedClock("2025-04-09"))
	again, err := svc.CompleteMilestone(ctx, m.ID, true)
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if *again.CompletedDate != "2025-04-02" {
		t.Errorf("completed_date = %q, want unchanged", *again.CompletedDate)
	}

	reopened, err := svc.CompleteMilestone(ctx, m.ID, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.CompletedDate != nil {
		t.Errorf("reopened completed_date = %q, want nil", *reopened.CompletedDate)
	}

	if _, err := svc.CompleteMilestone(ctx, 999, true); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func strPtr(s string) *string { return &s }

func TestAppointmentNextDue(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	a, err := svc.AddAppointment(ctx, &model.Appointment{Title: "Shots", Type: "vaccination", Date: "2025-01-01", Recurring: true})
	if err != nil {
		t.Fatalf("add appointment: %v", err)
	}
	if a.NextDueDate == nil || *a.NextDueDate != "2025-01-22" {
		t.Fatalf("next due = %v, want 2025-01-22", a.NextDueDate)
	}

	a.Recurring = false
	plain, err := svc.UpdateAppointment(ctx, a.ID, a)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if plain.NextDueDate != nil {
		t.Errorf("non-recurring next due = %q", *plain.NextDueDate)
	}

	flea, err := svc.AddAppointment(ctx, &model.Appointment{Title: "Flea meds", Type: "other", RecurringType: "flea-tick", Date: "2025-01-01", Recurring: true})
	if err != nil {
		t.Fatalf("add flea: %v", err)
	}
	if *flea.NextDueDate != "2025-02-01" {
		t.Errorf("flea next due = %q", *flea.NextDueDate)
	}
}

func TestCompleteRecurringAppointmentBooksFollowUp(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	a, err := svc.AddAppointment(ctx, &model.Appointment{Title: "Deworm", Type: "deworming", Date: "2025-01-01", Recurring: true, Documents: []string{"receipt.pdf"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	done, next, err := svc.CompleteAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Completed {
		t.Error("expected completed")
	}
	if next == nil {
		t.Fatal("expected follow-up appointment")
	}
	if next.Date != "2025-01-15" || *next.NextDueDate != "2025-01-29" {
		t.Errorf("follow-up date = %q, next due = %q", next.Date, *next.NextDueDate)
	}
	if len(next.Documents) != 0 {
		t.Errorf("follow-up documents = %v", next.Documents)
	}

	// Completing twice does not book another.
	_, again, err := svc.CompleteAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if again != nil {
		t.Error("expected no second follow-up")
	}
}

func TestSuccessRateWindow(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	rate, err := svc.SuccessRate(ctx, 7)
	if err != nil {
		t.Fatalf("success rate: %v", err)
	}
	if rate != 0 {
		t.Errorf("empty rate = %d, want 0", rate)
	}

	cmd := addCommand(t, svc, "Heel")
	for _, ok := range []bool{true, true, false, true} {
		if _, err := svc.AddPracticeLog(ctx, &model.PracticeLog{CommandID: cmd.ID, Date: "2025-03-01", Success: ok}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	rate, err = svc.SuccessRate(ctx, 7)
	if err != nil {
		t.Fatalf("success rate: %v", err)
	}
	if rate != 75 {
		t.Errorf("rate = %d, want 75", rate)
	}

	weekly, err := svc.WeeklyProgress(ctx)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if weekly.TrainingSessions != 4 || weekly.SuccessRate != 75 {
		t.Errorf("weekly = %+v", weekly)
	}

	snap, err := svc.RecordWeeklySnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.TrainingSessions != 4 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSuccessRateDays(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	cmd := addCommand(t, svc, "Heel")
	if _, err := svc.AddPracticeLog(ctx, &model.PracticeLog{CommandID: cmd.ID, Date: "2025-03-01", Success: true}); err != nil {
		t.Fatalf("add: %v", err)
	}
	// A clock a minute ahead puts the log outside a zero-day window.
	svc.SetClock(func() time.Time { return time.Now().Add(time.Minute) })

	if rate, err := svc.SuccessRate(ctx, 0); err != nil || rate != 0 {
		t.Errorf("zero-day rate = %d (err %v), want 0", rate, err)
	}
	if rate, err := svc.SuccessRate(ctx, 1); err != nil || rate != 100 {
		t.Errorf("one-day rate = %d (err %v), want 100", rate, err)
	}
	if _, err := svc.SuccessRate(ctx, -1); !model.IsWriteError(err) {
		t.Errorf("negative days err = %v, want WriteError", err)
	}
	if _, err := svc.PottySuccessRate(ctx, -1); !model.IsWriteError(err) {
		t.Errorf("negative potty days err = %v, want WriteError", err)
	}
}

func TestPottySuccessRate(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()
	potty, err := svc.CommandByName(ctx, model.PottyCommandName)
	if err != nil || potty == nil {
		t.Fatalf("potty command: %v", err)
	}

	for _, typ := range []string{"pee", "accident"} {
		if _, err := svc.PottyLogs.Add(ctx, &model.PottyLog{CommandID: potty.ID, Date: "2025-03-01", Type: typ, Location: "outside"}); err != nil {
			t.Fatalf("add potty: %v", err)
		}
	}
	rate, err := svc.PottySuccessRate(ctx, 7)
	if err != nil {
		t.Fatalf("potty rate: %v", err)
	}
	if rate != 50 {
		t.Errorf("rate = %d, want 50", rate)
	}
}

func TestCountsAndClearAll(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	if _, err := svc.Fears.Add(ctx, &model.FearLog{Trigger: "bike", Intensity: 2, Date: "2025-03-01"}); err != nil {
		t.Fatalf("add fear: %v", err)
	}
	counts, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[model.CollectionFearLogs] != 1 || counts[model.CollectionCommands] != 1 {
		t.Errorf("counts = %v", counts)
	}

	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	counts, _ = svc.Counts(ctx)
	if counts[model.CollectionFearLogs] != 0 {
		t.Errorf("fear logs after clear = %d", counts[model.CollectionFearLogs])
	}
	if counts[model.CollectionCommands] != 1 {
		t.Errorf("commands after clear = %d, want reseeded potty", counts[model.CollectionCommands])
	}
}

func TestCollectionPatchKeepsUnsetFields(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	f, err := svc.Fears.Add(ctx, &model.FearLog{Trigger: "bike", Intensity: 2, Date: "2025-03-01"})
	if err != nil {
		t.Fatalf("add fear: %v", err)
	}
	got, err := svc.Fears.Patch(ctx, f.ID, func(l *model.FearLog) error {
		l.Intensity = 4
		return nil
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got.Intensity != 4 || got.Trigger != "bike" || got.Date != "2025-03-01" {
		t.Errorf("patched = %+v", got)
	}

	_, err = svc.Fears.Patch(ctx, 999, func(*model.FearLog) error { return nil })
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("patch missing err = %v, want ErrNotFound", err)
	}

	applyErr := errors.New("bad field")
	if _, err := svc.Fears.Patch(ctx, f.ID, func(*model.FearLog) error { return applyErr }); !errors.Is(err, applyErr) {
		t.Errorf("patch err = %v, want apply error", err)
	}
}

func TestPatchMilestoneReopens(t *testing.T) {
	svc, _ := setupServiceTest(t)
	svc.SetClock(fixedClock("2025-03-10"))
	ctx := context.Background()

	m, err := svc.AddMilestone(ctx, &model.Milestone{Title: "First walk", Notes: "park", Completed: true})
	if err != nil {
		t.Fatalf("add milestone: %v", err)
	}
	got, err := svc.PatchMilestone(ctx, m.ID, func(m *model.Milestone) error {
		m.Completed = false
		return nil
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got.Completed || got.CompletedDate != nil || got.Notes != "park" || got.Title != "First walk" {
		t.Errorf("patched milestone = %+v", got)
	}
}
