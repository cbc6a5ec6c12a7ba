package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
)

const snapshotVersion = 1

// Snapshot holds every collection. Ids inside it are only meaningful
// relative to each other; Restore assigns fresh ones.
type Snapshot struct {
	Version      int                       `json:"version"`
	ExportedAt   time.Time                 `json:"exportedAt"`
	Commands     []model.Command           `json:"commands"`
	PracticeLogs []model.PracticeLog       `json:"practiceLogs"`
	PottyLogs    []model.PottyLog          `json:"pottyLogs"`
	MealLogs     []model.MealLog           `json:"mealLogs"`
	NapLogs      []model.NapLog            `json:"napLogs"`
	Milestones   []model.Milestone         `json:"milestones"`
	Appointments []model.Appointment       `json:"appointments"`
	Weights      []model.WeightEntry       `json:"weightEntries"`
	Teeth        []model.ToothLog          `json:"toothLogs"`
	Grooming     []model.GroomingLog       `json:"groomingLogs"`
	Fears        []model.FearLog           `json:"fearLogs"`
	Analytics    []model.AnalyticsSnapshot `json:"analyticsSnapshots"`
}

// Records is the total number of records across collections.
func (s *Snapshot) Records() int {
	return len(s.Commands) + len(s.PracticeLogs) + len(s.PottyLogs) + len(s.MealLogs) +
		len(s.NapLogs) + len(s.Milestones) + len(s.Appointments) + len(s.Weights) +
		len(s.Teeth) + len(s.Grooming) + len(s.Fears) + len(s.Analytics)
}

// Collect reads every collection through the service.
func Collect(ctx context.Context, svc *service.Service) (*Snapshot, error) {
	snap := &Snapshot{Version: snapshotVersion, ExportedAt: time.Now().UTC()}

	var err error
	if snap.Commands, err = svc.ListCommands(ctx); err != nil {
		return nil, fmt.Errorf("collect commands: %w", err)
	}
	if snap.PracticeLogs, err = svc.ListPracticeLogs(ctx); err != nil {
		return nil, fmt.Errorf("collect practice logs: %w", err)
	}
	if snap.PottyLogs, err = svc.PottyLogs.List(ctx); err != nil {
		return nil, fmt.Errorf("collect potty logs: %w", err)
	}
	if snap.MealLogs, err = svc.MealLogs.List(ctx); err != nil {
		return nil, fmt.Errorf("collect meal logs: %w", err)
	}
	if snap.NapLogs, err = svc.NapLogs.List(ctx); err != nil {
		return nil, fmt.Errorf("collect nap logs: %w", err)
	}
	if snap.Milestones, err = svc.ListMilestones(ctx); err != nil {
		return nil, fmt.Errorf("collect milestones: %w", err)
	}
	if snap.Appointments, err = svc.ListAppointments(ctx); err != nil {
		return nil, fmt.Errorf("collect appointments: %w", err)
	}
	if snap.Weights, err = svc.Weights.List(ctx); err != nil {
		return nil, fmt.Errorf("collect weight entries: %w", err)
	}
	if snap.Teeth, err = svc.Teeth.List(ctx); err != nil {
		return nil, fmt.Errorf("collect tooth logs: %w", err)
	}
	if snap.Grooming, err = svc.Grooming.List(ctx); err != nil {
		return nil, fmt.Errorf("collect grooming logs: %w", err)
	}
	if snap.Fears, err = svc.Fears.List(ctx); err != nil {
		return nil, fmt.Errorf("collect fear logs: %w", err)
	}
	if snap.Analytics, err = svc.ListSnapshots(ctx); err != nil {
		return nil, fmt.Errorf("collect analytics snapshots: %w", err)
	}
	return snap, nil
}

func WriteJSON(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func ReadJSON(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, snapshotVersion)
	}
	return &snap, nil
}

// Restore adds every record in snap, remapping command ids. The seeded
// potty command is reused rather than duplicated. It returns the number of
// records written per collection.
func Restore(ctx context.Context, svc *service.Service, snap *Snapshot) (map[string]int, error) {
	written := make(map[string]int)
	commandIDs := make(map[int64]int64, len(snap.Commands))

	for _, c := range snap.Commands {
		if strings.EqualFold(c.Name, model.PottyCommandName) {
			existing, err := svc.CommandByName(ctx, model.PottyCommandName)
			if err != nil {
				return written, err
			}
			if existing != nil {
				commandIDs[c.ID] = existing.ID
				continue
			}
		}
		oldID := c.ID
		created, err := svc.AddCommand(ctx, &c)
		if err != nil {
			return written, fmt.Errorf("restore command %q: %w", c.Name, err)
		}
		commandIDs[oldID] = created.ID
		written[model.CollectionCommands]++
	}

	remap := func(collection string, id int64) (int64, error) {
		newID, ok := commandIDs[id]
		if !ok {
			return 0, &model.WriteError{Collection: collection, Field: "command_id", Reason: fmt.Sprintf("references command %d missing from snapshot", id)}
		}
		return newID, nil
	}

	for _, l := range snap.PracticeLogs {
		var err error
		if l.CommandID, err = remap(model.CollectionPracticeLogs, l.CommandID); err != nil {
			return written, err
		}
		if _, err := svc.AddPracticeLog(ctx, &l); err != nil {
			return written, fmt.Errorf("restore practice log: %w", err)
		}
		written[model.CollectionPracticeLogs]++
	}
	for _, l := range snap.PottyLogs {
		var err error
		if l.CommandID, err = remap(model.CollectionPottyLogs, l.CommandID); err != nil {
			return written, err
		}
		if _, err := svc.PottyLogs.Add(ctx, &l); err != nil {
			return written, fmt.Errorf("restore potty log: %w", err)
		}
		written[model.CollectionPottyLogs]++
	}
	for _, l := range snap.MealLogs {
		var err error
		if l.CommandID, err = remap(model.CollectionMealLogs, l.CommandID); err != nil {
			return written, err
		}
		if _, err := svc.MealLogs.Add(ctx, &l); err != nil {
			return written, fmt.Errorf("restore meal log: %w", err)
		}
		written[model.CollectionMealLogs]++
	}
	for _, l := range snap.NapLogs {
		var err error
		if l.CommandID, err = remap(model.CollectionNapLogs, l.CommandID); err != nil {
			return written, err
		}
		if _, err := svc.NapLogs.Add(ctx, &l); err != nil {
			return written, fmt.Errorf("restore nap log: %w", err)
		}
		written[model.CollectionNapLogs]++
	}

	for _, m := range snap.Milestones {
		if _, err := svc.AddMilestone(ctx, &m); err != nil {
			return written, fmt.Errorf("restore milestone: %w", err)
		}
		written[model.CollectionMilestones]++
	}
	for _, a := range snap.Appointments {
		if _, err := svc.AddAppointment(ctx, &a); err != nil {
			return written, fmt.Errorf("restore appointment: %w", err)
		}
		written[model.CollectionAppointments]++
	}
	if err := restoreAll(ctx, svc.Weights, snap.Weights, written); err != nil {
		return written, err
	}
	if err := restoreAll(ctx, svc.Teeth, snap.Teeth, written); err != nil {
		return written, err
	}
	if err := restoreAll(ctx, svc.Grooming, snap.Grooming, written); err != nil {
		return written, err
	}
	if err := restoreAll(ctx, svc.Fears, snap.Fears, written); err != nil {
		return written, err
	}
	for _, a := range snap.Analytics {
		if _, err := svc.AddSnapshot(ctx, a.WeeklyProgress); err != nil {
			return written, fmt.Errorf("restore analytics snapshot: %w", err)
		}
		written[model.CollectionAnalytics]++
	}
	return written, nil
}

// Replace swaps every collection for the contents of snap. The current
// records are collected first and put back if any record in snap fails to
// restore, so a bad snapshot never leaves the store half empty. Restored
// records get fresh ids either way.
func Replace(ctx context.Context, svc *service.Service, snap *Snapshot) (map[string]int, error) {
	previous, err := Collect(ctx, svc)
	if err != nil {
		return nil, fmt.Errorf("collect before replace: %w", err)
	}
	if err := svc.ClearAll(ctx); err != nil {
		return nil, fmt.Errorf("clear before replace: %w", err)
	}

	written, err := Restore(ctx, svc, snap)
	if err == nil {
		return written, nil
	}
	if cerr := svc.ClearAll(ctx); cerr != nil {
		return nil, errors.Join(err, fmt.Errorf("clear partial restore: %w", cerr))
	}
	if _, rerr := Restore(ctx, svc, previous); rerr != nil {
		return nil, errors.Join(err, fmt.Errorf("put back previous records: %w", rerr))
	}
	return nil, err
}

func restoreAll[T any](ctx context.Context, c *service.Collection[T], recs []T, written map[string]int) error {
	for i := range recs {
		if _, err := c.Add(ctx, &recs[i]); err != nil {
			return fmt.Errorf("restore %s: %w", c.Name(), err)
		}
		written[c.Name()]++
	}
	return nil
}
