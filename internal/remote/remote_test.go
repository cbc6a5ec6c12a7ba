package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
)

const testKey = "anon-key"

// fakeREST is an in-memory stand-in for a PostgREST endpoint. It supports
// eq/gte/lte filters, limit, exact counts, a max-rows cap on reads, and a
// command_id foreign key.
type fakeREST struct {
	mu      sync.Mutex
	tables  map[string][]map[string]any
	nextID  int64
	fail    *errorBody
	maxRows int
}

func newFakeREST(t *testing.T) (*fakeREST, *Client) {
	t.Helper()
	f := &fakeREST{tables: make(map[string][]map[string]any)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, NewClient(srv.URL+"/", testKey)
}

func (f *fakeREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != testKey || r.Header.Get("Authorization") != "Bearer "+testKey {
		writeFake(w, http.StatusUnauthorized, errorBody{Code: "PGRST301", Message: "invalid key"})
		return
	}
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail != nil {
		writeFake(w, http.StatusInternalServerError, *f.fail)
		return
	}

	switch r.Method {
	case http.MethodHead:
		if r.Header.Get("Prefer") != "count=exact" {
			w.Header().Set("Content-Range", "*/*")
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Range", fmt.Sprintf("*/%d", len(f.matching(table, r))))
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		rows := f.matching(table, r)
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n < len(rows) {
			rows = rows[:n]
		}
		if f.maxRows > 0 && f.maxRows < len(rows) {
			rows = rows[:f.maxRows]
		}
		writeFake(w, http.StatusOK, rows)
	case http.MethodPost:
		var row map[string]any
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			writeFake(w, http.StatusBadRequest, errorBody{Message: err.Error()})
			return
		}
		if cid, ok := row["command_id"]; ok && !f.exists(model.CollectionCommands, cid) {
			writeFake(w, http.StatusConflict, errorBody{Code: pgForeignKey, Message: "violates foreign key constraint"})
			return
		}
		f.nextID++
		row["id"] = float64(f.nextID)
		f.tables[table] = append(f.tables[table], row)
		writeFake(w, http.StatusCreated, []map[string]any{row})
	case http.MethodPatch:
		var cols map[string]any
		if err := json.NewDecoder(r.Body).Decode(&cols); err != nil {
			writeFake(w, http.StatusBadRequest, errorBody{Message: err.Error()})
			return
		}
		rows := f.matching(table, r)
		for _, row := range rows {
			for k, v := range cols {
				row[k] = v
			}
		}
		writeFake(w, http.StatusOK, rows)
	case http.MethodDelete:
		gone := f.matching(table, r)
		kept := f.tables[table][:0]
		for _, row := range f.tables[table] {
			if !contains(gone, row) {
				kept = append(kept, row)
			}
		}
		f.tables[table] = kept
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakeREST) exists(table string, id any) bool {
	for _, row := range f.tables[table] {
		if fmt.Sprint(row["id"]) == fmt.Sprint(id) {
			return true
		}
	}
	return false
}

func (f *fakeREST) matching(table string, r *http.Request) []map[string]any {
	var out []map[string]any
	for _, row := range f.tables[table] {
		ok := true
		for key, filters := range r.URL.Query() {
			if key == "select" || key == "order" || key == "limit" {
				continue
			}
			for _, filter := range filters {
				op, want, _ := strings.Cut(filter, ".")
				if !compare(row[key], op, want) {
					ok = false
				}
			}
		}
		if ok {
			out = append(out, row)
		}
	}
	return out
}

func compare(v any, op, want string) bool {
	got := fmt.Sprint(v)
	if v == nil {
		got = "null"
	}
	cmp := strings.Compare(got, want)
	if gt, err := time.Parse(time.RFC3339Nano, got); err == nil {
		if wt, err := time.Parse(time.RFC3339Nano, want); err == nil {
			cmp = gt.Compare(wt)
		}
	}
	switch op {
	case "eq":
		return got == want
	case "gte":
		return cmp >= 0
	case "lte":
		return cmp <= 0
	}
	return false
}

func contains(rows []map[string]any, row map[string]any) bool {
	for _, r := range rows {
		if fmt.Sprint(r["id"]) == fmt.Sprint(row["id"]) {
			return true
		}
	}
	return false
}

func writeFake(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestMappingRoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 30, 0, 123456000, time.UTC)

	check := func(name string, want, got any) {
		t.Helper()
		if !reflect.DeepEqual(want, got) {
			t.Errorf("%s round trip:\n got  %+v\n want %+v", name, got, want)
		}
	}

	cmd := model.Command{ID: 3, Name: "Sit", AgeWeek: 8, Difficulty: "easy", Progress: 50, SessionsCount: 4, LastPracticed: strp("2025-03-01"), IsCustom: true, Version: 7, CreatedAt: created}
	check("command", cmd, commandFromRow(commandToRow(&cmd)))

	pl := model.PracticeLog{ID: 4, CommandID: 3, Date: "2025-03-01", Time: "09:00", Attempts: intp(5), Successes: intp(3), Distractions: "cat", Reliability: intp(7), Notes: "ok", LoggedBy: "alex", Success: true, CreatedAt: created}
	check("practice log", pl, practiceLogFromRow(practiceLogToRow(&pl)))

	pt := model.PottyLog{ID: 5, CommandID: 1, Date: "2025-03-01", Time: "07:15", Type: "pee", Location: "outside", LoggedBy: "sam", Notes: "quick", CreatedAt: created}
	check("potty log", pt, pottyLogFromRow(pottyLogToRow(&pt)))

	ml := model.MealLog{ID: 6, CommandID: 1, Date: "2025-03-01", Time: "08:00", MealType: "breakfast", Amount: "1 cup", Food: "kibble", LoggedBy: "sam", Notes: "ate all", CreatedAt: created}
	check("meal log", ml, mealLogFromRow(mealLogToRow(&ml)))

	nl := model.NapLog{ID: 7, CommandID: 1, Date: "2025-03-01", StartTime: "23:00", EndTime: strp("01:00"), Location: "crate", LoggedBy: "sam", Notes: "deep", CreatedAt: created}
	check("nap log", nl, napLogFromRow(napLogToRow(&nl)))

	ms := model.Milestone{ID: 8, Title: "First walk", Description: "around the block", Category: "socialization", TargetWeek: 10, Completed: true, CompletedDate: strp("2025-03-02"), PhotoRef: "walk.jpg", Notes: "n", Importance: "high", CreatedAt: created}
	check("milestone", ms, milestoneFromRow(milestoneToRow(&ms)))

	ap := model.Appointment{ID: 9, Title: "Shots", Type: "vaccination", Date: "2025-03-10", Time: "10:00", Location: "vet", Notes: "n", Reminder: true, Recurring: true, RecurringType: "vaccination", NextDueDate: strp("2025-03-31"), Completed: false, Documents: []string{"a.pdf"}, CreatedAt: created}
	check("appointment", ap, appointmentFromRow(appointmentToRow(&ap)))

	we := model.WeightEntry{ID: 10, Weight: 12.5, Unit: "lbs", Week: 9, Date: "2025-03-01", Notes: "n", CreatedAt: created}
	check("weight", we, weightFromRow(weightToRow(&we)))

	tl := model.ToothLog{ID: 11, ToothType: "molar", Date: "2025-03-01", Notes: "n", CreatedAt: created}
	check("tooth", tl, toothFromRow(toothToRow(&tl)))

	gl := model.GroomingLog{ID: 12, Activity: "bath", DurationMinutes: 15, Tolerance: 4, Date: "2025-03-01", Notes: "n", CreatedAt: created}
	check("grooming", gl, groomingFromRow(groomingToRow(&gl)))

	fl := model.FearLog{ID: 13, Trigger: "doorbell", Intensity: 3, Response: "barked", Date: "2025-03-01", Notes: "n", CreatedAt: created}
	check("fear", fl, fearFromRow(fearToRow(&fl)))

	sn := model.AnalyticsSnapshot{ID: 14, WeeklyProgress: model.WeeklyProgress{WeekStart: "2025-02-23", TrainingSessions: 5, PottyLogs: 9, SuccessRate: 80}, CreatedAt: created}
	check("snapshot", sn, snapshotFromRow(snapshotToRow(&sn)))
}

func TestAppointmentNilDocumentsBecomeEmpty(t *testing.T) {
	row := appointmentToRow(&model.Appointment{Title: "Vet"})
	if row.Documents == nil || len(row.Documents) != 0 {
		t.Errorf("documents = %#v, want empty slice", row.Documents)
	}
	data, _ := json.Marshal(row)
	if !strings.Contains(string(data), `"documents":[]`) {
		t.Errorf("row json = %s", data)
	}
}

func TestTableCRUD(t *testing.T) {
	_, c := newFakeREST(t)
	b := NewBackend(c)
	ctx := context.Background()

	w, err := b.Weights.Create(ctx, &model.WeightEntry{Weight: 10, Unit: "lbs", Date: "2025-03-01"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.ID == 0 || w.CreatedAt.IsZero() {
		t.Fatalf("create did not assign id and created_at: %+v", w)
	}

	got, err := b.Weights.GetByID(ctx, w.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v, %v", got, err)
	}
	if got.Weight != 10 || got.Unit != "lbs" {
		t.Errorf("got %+v", got)
	}

	missing, err := b.Weights.GetByID(ctx, 999)
	if err != nil || missing != nil {
		t.Errorf("get missing = %v, %v; want nil, nil", missing, err)
	}

	got.Weight = 11
	updated, err := b.Weights.Update(ctx, w.ID, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Weight != 11 || !updated.CreatedAt.Equal(w.CreatedAt) {
		t.Errorf("updated = %+v", updated)
	}

	var nf *model.NotFoundError
	if _, err := b.Weights.Update(ctx, 999, got); !errors.As(err, &nf) {
		t.Errorf("update missing err = %v, want NotFoundError", err)
	}

	if _, err := b.Weights.Create(ctx, &model.WeightEntry{Weight: -1, Unit: "lbs", Date: "2025-03-01"}); err == nil {
		t.Error("expected validation error before any request")
	}

	if n, err := b.Weights.Count(ctx); err != nil || n != 1 {
		t.Errorf("count = %d, %v; want 1", n, err)
	}
	if err := b.Weights.Delete(ctx, w.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := b.Weights.Delete(ctx, w.ID); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if n, _ := b.Weights.Count(ctx); n != 0 {
		t.Errorf("count after delete = %d", n)
	}
}

func TestCountIgnoresMaxRows(t *testing.T) {
	f, c := newFakeREST(t)
	b := NewBackend(c)
	ctx := context.Background()
	f.maxRows = 2

	for i := 1; i <= 3; i++ {
		if _, err := b.Weights.Create(ctx, &model.WeightEntry{Weight: float64(i), Unit: "kg", Date: "2025-03-01"}); err != nil {
			t.Fatalf("create weight: %v", err)
		}
	}
	list, err := b.Weights.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d rows, want the capped 2", len(list))
	}
	n, err := b.Weights.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestCountError(t *testing.T) {
	f, c := newFakeREST(t)
	f.fail = &errorBody{Code: "XX000", Message: "boom"}

	_, err := NewBackend(c).Fears.Count(context.Background())
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Method != http.MethodHead || rerr.StatusCode != http.StatusInternalServerError {
		t.Errorf("err = %v, want HEAD 500", err)
	}
}

func TestForeignKeyBecomesWriteError(t *testing.T) {
	_, c := newFakeREST(t)
	b := NewBackend(c)

	_, err := b.PracticeLogs.Create(context.Background(), &model.PracticeLog{CommandID: 42, Date: "2025-03-01"})
	var we *model.WriteError
	if !errors.As(err, &we) {
		t.Fatalf("err = %v, want WriteError", err)
	}
	if we.Field != "command_id" {
		t.Errorf("field = %q, want command_id", we.Field)
	}
}

func TestErrorResponse(t *testing.T) {
	f, c := newFakeREST(t)
	f.fail = &errorBody{Code: "XX000", Message: "boom"}

	_, err := NewBackend(c).Milestones.List(context.Background())
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if rerr.StatusCode != http.StatusInternalServerError || rerr.Message != "boom" || rerr.Table != model.CollectionMilestones {
		t.Errorf("error = %+v", rerr)
	}
}

func TestBadKey(t *testing.T) {
	_, c := newFakeREST(t)
	c.apiKey = "wrong"

	_, err := NewBackend(c).Teeth.List(context.Background())
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.StatusCode != http.StatusUnauthorized {
		t.Errorf("err = %v, want 401", err)
	}
}

func TestCommandVersioning(t *testing.T) {
	_, c := newFakeREST(t)
	b := NewBackend(c)
	ctx := context.Background()

	cmd, err := b.Commands.Create(ctx, &model.Command{Name: "Sit", Difficulty: "easy", Progress: 90})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cmd.Version != 1 || cmd.Progress != 0 {
		t.Fatalf("created = %+v, want version 1 and zero progress", cmd)
	}

	cmd.Name = "Sit pretty"
	updated, err := b.Commands.Update(ctx, cmd.ID, cmd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 || updated.Name != "Sit pretty" {
		t.Errorf("updated = %+v", updated)
	}

	p := model.CommandProgress{Progress: 50, SessionsCount: 2, LastPracticed: strp("2025-03-01")}
	if err := b.Commands.UpdateProgress(ctx, cmd.ID, p, 1); !errors.Is(err, model.ErrConflict) {
		t.Errorf("stale version err = %v, want ErrConflict", err)
	}
	if err := b.Commands.UpdateProgress(ctx, cmd.ID, p, 2); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	var nf *model.NotFoundError
	if err := b.Commands.UpdateProgress(ctx, 999, p, 1); !errors.As(err, &nf) {
		t.Errorf("missing err = %v, want NotFoundError", err)
	}

	got, err := b.Commands.GetByName(ctx, "Sit pretty")
	if err != nil || got == nil {
		t.Fatalf("get by name: %v, %v", got, err)
	}
	if got.Progress != 50 || got.Version != 3 || *got.LastPracticed != "2025-03-01" {
		t.Errorf("after progress = %+v", got)
	}
	if none, err := b.Commands.GetByName(ctx, "Stay"); err != nil || none != nil {
		t.Errorf("get missing name = %v, %v", none, err)
	}
}

func TestServiceOverRemote(t *testing.T) {
	_, c := newFakeREST(t)
	b := NewBackend(c)
	svc := service.New(b)
	ctx := context.Background()

	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	potty, err := svc.CommandByName(ctx, model.PottyCommandName)
	if err != nil || potty == nil {
		t.Fatalf("seeded potty command: %v, %v", potty, err)
	}

	sit, err := svc.AddCommand(ctx, &model.Command{Name: "Sit"})
	if err != nil {
		t.Fatalf("add command: %v", err)
	}
	for _, ok := range []bool{true, true, false} {
		if _, err := svc.AddPracticeLog(ctx, &model.PracticeLog{CommandID: sit.ID, Date: "2025-03-01", Success: ok}); err != nil {
			t.Fatalf("add practice log: %v", err)
		}
	}

	got, err := svc.GetCommand(ctx, sit.ID)
	if err != nil {
		t.Fatalf("get command: %v", err)
	}
	if got.SessionsCount != 3 || got.Progress != 67 {
		t.Errorf("progress = %d sessions = %d, want 67 and 3", got.Progress, got.SessionsCount)
	}

	rate, err := svc.SuccessRate(ctx, 7)
	if err != nil {
		t.Fatalf("success rate: %v", err)
	}
	if rate != 67 {
		t.Errorf("success rate = %d, want 67", rate)
	}

	appt, err := svc.AddAppointment(ctx, &model.Appointment{Title: "Shots", Type: "vaccination", Date: "2999-01-01", Recurring: true})
	if err != nil {
		t.Fatalf("add appointment: %v", err)
	}
	if appt.NextDueDate == nil || *appt.NextDueDate != "2999-01-22" {
		t.Errorf("next due = %v, want 2999-01-22", appt.NextDueDate)
	}
	upcoming, err := b.Appointments.ListUpcoming(ctx, "2025-01-01")
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(upcoming) != 1 {
		t.Errorf("upcoming = %d, want 1", len(upcoming))
	}

	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	counts, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	for name, n := range counts {
		want := 0
		if name == model.CollectionCommands {
			want = 1
		}
		if n != want {
			t.Errorf("%s count after clear = %d, want %d", name, n, want)
		}
	}
}
