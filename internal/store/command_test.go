package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/pawlog/internal/database"
	"github.com/dukerupert/pawlog/internal/model"
)

func setupCommandTestDB(t *testing.T) (*CommandStore, *PracticeLogStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCommandStore(db), NewPracticeLogStore(db)
}

func TestCommandSeedData(t *testing.T) {
	cs, _ := setupCommandTestDB(t)
	ctx := context.Background()

	potty, err := cs.GetByName(ctx, model.PottyCommandName)
	if err != nil {
		t.Fatalf("get potty command: %v", err)
	}
	if potty == nil {
		t.Fatal("expected seeded potty command")
	}
	if potty.IsCustom {
		t.Error("seeded potty command should not be custom")
	}
}

func TestCommandCRUD(t *testing.T) {
	cs, _ := setupCommandTestDB(t)
	ctx := context.Background()

	// Create
	c, err := cs.Create(ctx, &model.Command{Name: "Sit", AgeWeek: 8, Difficulty: "easy", Progress: 90, SessionsCount: 4})
	if err != nil {
		t.Fatalf("create command: %v", err)
	}
	if c.Progress != 0 || c.SessionsCount != 0 {
		t.Errorf("progress = %d, sessions = %d, want 0, 0", c.Progress, c.SessionsCount)
	}
	if c.Version != 1 {
		t.Errorf("version = %d, want 1", c.Version)
	}
	if c.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	// Update
	updated, err := cs.Update(ctx, c.ID, &model.Command{Name: "Sit Pretty", AgeWeek: 9, Difficulty: "medium"})
	if err != nil {
		t.Fatalf("update command: %v", err)
	}
	if updated.Name != "Sit Pretty" || updated.AgeWeek != 9 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}

	// Delete twice is fine
	if err := cs.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete command: %v", err)
	}
	if err := cs.Delete(ctx, c.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	got, err := cs.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestCommandUpdateMissing(t *testing.T) {
	cs, _ := setupCommandTestDB(t)

	_, err := cs.Update(context.Background(), 999, &model.Command{Name: "Down", Difficulty: "easy"})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCommandValidation(t *testing.T) {
	cs, _ := setupCommandTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  model.Command
	}{
		{"empty name", model.Command{Difficulty: "easy"}},
		{"bad difficulty", model.Command{Name: "Stay", Difficulty: "extreme"}},
		{"negative week", model.Command{Name: "Stay", Difficulty: "easy", AgeWeek: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cs.Create(ctx, &tt.cmd)
			if !model.IsWriteError(err) {
				t.Errorf("err = %v, want WriteError", err)
			}
		})
	}

	n, err := cs.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want only the seeded command", n)
	}
}

func TestCommandUpdateProgressVersion(t *testing.T) {
	cs, _ := setupCommandTestDB(t)
	ctx := context.Background()

	c, err := cs.Create(ctx, &model.Command{Name: "Come", Difficulty: "hard"})
	if err != nil {
		t.Fatalf("create command: %v", err)
	}

	last := "2025-03-01"
	p := model.CommandProgress{Progress: 67, SessionsCount: 3, LastPracticed: &last}
	if err := cs.UpdateProgress(ctx, c.ID, p, c.Version); err != nil {
		t.Fatalf("update progress: %v", err)
	}

	// The old version is now stale.
	if err := cs.UpdateProgress(ctx, c.ID, p, c.Version); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("stale update err = %v, want ErrConflict", err)
	}
	if err := cs.UpdateProgress(ctx, 999, p, 1); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("missing update err = %v, want ErrNotFound", err)
	}

	got, err := cs.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get command: %v", err)
	}
	if got.Progress != 67 || got.SessionsCount != 3 {
		t.Errorf("progress = %d, sessions = %d, want 67, 3", got.Progress, got.SessionsCount)
	}
	if got.LastPracticed == nil || *got.LastPracticed != last {
		t.Errorf("last_practiced = %v, want %q", got.LastPracticed, last)
	}
}

func TestCommandDeleteCascadesLogs(t *testing.T) {
	cs, ps := setupCommandTestDB(t)
	ctx := context.Background()

	c, err := cs.Create(ctx, &model.Command{Name: "Heel", Difficulty: "medium"})
	if err != nil {
		t.Fatalf("create command: %v", err)
	}
	if _, err := ps.Create(ctx, &model.PracticeLog{CommandID: c.ID, Date: "2025-03-01", Success: true}); err != nil {
		t.Fatalf("create practice log: %v", err)
	}
	if err := cs.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete command: %v", err)
	}

	logs, err := ps.ListByCommand(ctx, c.ID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected logs removed with command, got %d", len(logs))
	}
}
