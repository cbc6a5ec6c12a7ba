package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/pawlog/internal/model"
)

func (m *Migrator) migrateCommands(ctx context.Context) (int, error) {
	m.commandIDs = make(map[string]int64)
	return migrateEach(ctx, m.src, keyCommands, FamilyCommands, func(ctx context.Context, e element, b *batch) error {
		var c model.Command
		if err := into(e, nil, &c); err != nil {
			return err
		}

		// The potty pseudo-command is seeded; map onto it rather than duplicating.
		if strings.EqualFold(c.Name, model.PottyCommandName) {
			existing, err := m.svc.CommandByName(ctx, model.PottyCommandName)
			if err != nil {
				return err
			}
			if existing != nil {
				m.commandIDs[e.text("id")] = existing.ID
				return nil
			}
		}

		created, err := m.svc.AddCommand(ctx, &c)
		if err != nil {
			return err
		}
		m.commandIDs[e.text("id")] = created.ID
		b.added(m.svc.DeleteCommand, created.ID)
		return nil
	})
}

// loadCommandMap rebuilds the legacy id mapping by name when the commands
// family was migrated by an earlier run.
func (m *Migrator) loadCommandMap(ctx context.Context) error {
	m.commandIDs = make(map[string]int64)
	raw, err := m.src.Load(keyCommands)
	if err != nil || raw == nil {
		return err
	}
	elems, err := decodeElements(raw)
	if err != nil {
		return err
	}
	for _, e := range elems {
		c, err := m.svc.CommandByName(ctx, e.text("name"))
		if err != nil {
			return err
		}
		if c != nil {
			m.commandIDs[e.text("id")] = c.ID
		}
	}
	return nil
}

func (m *Migrator) migrateLogs(ctx context.Context) (int, error) {
	if m.commandIDs == nil {
		if err := m.loadCommandMap(ctx); err != nil {
			return 0, err
		}
	}
	potty, err := m.svc.CommandByName(ctx, model.PottyCommandName)
	if err != nil {
		return 0, err
	}

	return migrateEach(ctx, m.src, keyLogs, FamilyLogs, func(ctx context.Context, e element, b *batch) error {
		kind := logKind(e)
		cmdID, ok := m.commandIDs[e.text("commandId")]
		if !ok && kind == "potty" && potty != nil {
			cmdID, ok = potty.ID, true
		}
		if !ok {
			slog.Warn("skipping legacy log for unknown command", "command_id", e.text("commandId"), "kind", kind)
			return nil
		}

		switch kind {
		case "practice":
			var l model.PracticeLog
			if err := into(e, nil, &l); err != nil {
				return err
			}
			// AddPracticeLog recomputes the command's progress.
			l.CommandID = cmdID
			return addRecord(ctx, b, &l, m.svc.AddPracticeLog, m.svc.DeletePracticeLog, func(l *model.PracticeLog) int64 { return l.ID })
		case "potty":
			var l model.PottyLog
			if err := into(e, nil, &l); err != nil {
				return err
			}
			l.CommandID = cmdID
			return addRecord(ctx, b, &l, m.svc.PottyLogs.Add, m.svc.PottyLogs.Delete, func(l *model.PottyLog) int64 { return l.ID })
		case "meal":
			var l model.MealLog
			if err := into(e, map[string]string{"type": "mealType"}, &l); err != nil {
				return err
			}
			l.CommandID = cmdID
			return addRecord(ctx, b, &l, m.svc.MealLogs.Add, m.svc.MealLogs.Delete, func(l *model.MealLog) int64 { return l.ID })
		case "nap":
			var l model.NapLog
			if err := into(e, nil, &l); err != nil {
				return err
			}
			l.CommandID = cmdID
			return addRecord(ctx, b, &l, m.svc.NapLogs.Add, m.svc.NapLogs.Delete, func(l *model.NapLog) int64 { return l.ID })
		default:
			return recordError(model.CollectionPracticeLogs, fmt.Sprintf("unknown log kind %q", kind))
		}
	})
}

func (m *Migrator) migrateMilestones(ctx context.Context) (int, error) {
	rename := map[string]string{"photo": "photoRef"}
	return migrateEach(ctx, m.src, keyMilestones, FamilyMilestones, func(ctx context.Context, e element, b *batch) error {
		var ms model.Milestone
		if err := into(e, rename, &ms); err != nil {
			return err
		}
		return addRecord(ctx, b, &ms, m.svc.AddMilestone, m.svc.DeleteMilestone, func(ms *model.Milestone) int64 { return ms.ID })
	})
}

func (m *Migrator) migrateAppointments(ctx context.Context) (int, error) {
	return migrateEach(ctx, m.src, keyAppointments, FamilyAppointments, func(ctx context.Context, e element, b *batch) error {
		var a model.Appointment
		if err := into(e, nil, &a); err != nil {
			return err
		}
		return addRecord(ctx, b, &a, m.svc.AddAppointment, m.svc.DeleteAppointment, func(a *model.Appointment) int64 { return a.ID })
	})
}

func (m *Migrator) migrateWeights(ctx context.Context) (int, error) {
	return migrateEach(ctx, m.src, keyWeights, FamilyWeight, func(ctx context.Context, e element, b *batch) error {
		var w model.WeightEntry
		if err := into(e, nil, &w); err != nil {
			return err
		}
		if w.Unit == "" {
			w.Unit = "lbs"
		}
		return addRecord(ctx, b, &w, m.svc.Weights.Add, m.svc.Weights.Delete, func(w *model.WeightEntry) int64 { return w.ID })
	})
}

func (m *Migrator) migrateTeeth(ctx context.Context) (int, error) {
	return migrateEach(ctx, m.src, keyTeeth, FamilyTooth, func(ctx context.Context, e element, b *batch) error {
		var t model.ToothLog
		if err := into(e, nil, &t); err != nil {
			return err
		}
		return addRecord(ctx, b, &t, m.svc.Teeth.Add, m.svc.Teeth.Delete, func(t *model.ToothLog) int64 { return t.ID })
	})
}

func (m *Migrator) migrateGrooming(ctx context.Context) (int, error) {
	return migrateEach(ctx, m.src, keyGrooming, FamilyGrooming, func(ctx context.Context, e element, b *batch) error {
		var g model.GroomingLog
		if err := into(e, nil, &g); err != nil {
			return err
		}
		return addRecord(ctx, b, &g, m.svc.Grooming.Add, m.svc.Grooming.Delete, func(g *model.GroomingLog) int64 { return g.ID })
	})
}

func (m *Migrator) migrateFears(ctx context.Context) (int, error) {
	return migrateEach(ctx, m.src, keyFears, FamilyFear, func(ctx context.Context, e element, b *batch) error {
		var f model.FearLog
		if err := into(e, nil, &f); err != nil {
			return err
		}
		return addRecord(ctx, b, &f, m.svc.Fears.Add, m.svc.Fears.Delete, func(f *model.FearLog) int64 { return f.ID })
	})
}
