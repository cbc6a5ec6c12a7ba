package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

// Workbook writes one worksheet per collection in snap.
func Workbook(w io.Writer, snap *Snapshot) error {
	if snap.Records() == 0 {
		return ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, sh := range sheets(snap) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return fmt.Errorf("rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", sh.name, err)
		}

		if err := f.SetSheetRow(sh.name, "A1", &sh.header); err != nil {
			return fmt.Errorf("write %s header: %w", sh.name, err)
		}
		if err := f.SetRowStyle(sh.name, 1, 1, bold); err != nil {
			return fmt.Errorf("style %s header: %w", sh.name, err)
		}
		for r, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", sh.name, r+2, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func optional[T any](p *T) any {
	if p == nil {
		return ""
	}
	return *p
}

func sheets(snap *Snapshot) []sheet {
	commandNames := make(map[int64]string, len(snap.Commands))
	commands := sheet{name: "Commands", header: []any{"Name", "Age Week", "Difficulty", "Progress", "Sessions", "Last Practiced", "Custom"}}
	for _, c := range snap.Commands {
		commandNames[c.ID] = c.Name
		commands.rows = append(commands.rows, []any{c.Name, c.AgeWeek, c.Difficulty, c.Progress, c.SessionsCount, optional(c.LastPracticed), c.IsCustom})
	}

	practice := sheet{name: "Practice", header: []any{"Command", "Date", "Time", "Attempts", "Successes", "Distractions", "Reliability", "Success", "Notes", "Logged By"}}
	for _, l := range snap.PracticeLogs {
		practice.rows = append(practice.rows, []any{commandNames[l.CommandID], l.Date, l.Time, optional(l.Attempts), optional(l.Successes), l.Distractions, optional(l.Reliability), l.Success, l.Notes, l.LoggedBy})
	}

	potty := sheet{name: "Potty", header: []any{"Date", "Time", "Type", "Location", "Logged By", "Notes"}}
	for _, l := range snap.PottyLogs {
		potty.rows = append(potty.rows, []any{l.Date, l.Time, l.Type, l.Location, l.LoggedBy, l.Notes})
	}

	meals := sheet{name: "Meals", header: []any{"Date", "Time", "Meal", "Amount", "Food", "Logged By", "Notes"}}
	for _, l := range snap.MealLogs {
		meals.rows = append(meals.rows, []any{l.Date, l.Time, l.MealType, l.Amount, l.Food, l.LoggedBy, l.Notes})
	}

	naps := sheet{name: "Naps", header: []any{"Date", "Start", "End", "Minutes", "Location", "Logged By", "Notes"}}
	for _, l := range snap.NapLogs {
		minutes := any("")
		if d, ok := l.Duration(); ok {
			minutes = int(d.Minutes())
		}
		naps.rows = append(naps.rows, []any{l.Date, l.StartTime, optional(l.EndTime), minutes, l.Location, l.LoggedBy, l.Notes})
	}

	milestones := sheet{name: "Milestones", header: []any{"Title", "Category", "Target Week", "Importance", "Completed", "Completed Date", "Notes"}}
	for _, m := range snap.Milestones {
		milestones.rows = append(milestones.rows, []any{m.Title, m.Category, m.TargetWeek, m.Importance, m.Completed, optional(m.CompletedDate), m.Notes})
	}

	appts := sheet{name: "Appointments", header: []any{"Title", "Type", "Date", "Time", "Location", "Recurring", "Next Due", "Completed", "Notes"}}
	for _, a := range snap.Appointments {
		appts.rows = append(appts.rows, []any{a.Title, a.Type, a.Date, a.Time, a.Location, a.Recurring, optional(a.NextDueDate), a.Completed, a.Notes})
	}

	weights := sheet{name: "Weight", header: []any{"Date", "Week", "Weight", "Unit", "Notes"}}
	for _, e := range snap.Weights {
		weights.rows = append(weights.rows, []any{e.Date, e.Week, e.Weight, e.Unit, e.Notes})
	}

	teeth := sheet{name: "Teeth", header: []any{"Date", "Tooth", "Notes"}}
	for _, t := range snap.Teeth {
		teeth.rows = append(teeth.rows, []any{t.Date, t.ToothType, t.Notes})
	}

	grooming := sheet{name: "Grooming", header: []any{"Date", "Activity", "Minutes", "Tolerance", "Notes"}}
	for _, g := range snap.Grooming {
		grooming.rows = append(grooming.rows, []any{g.Date, g.Activity, g.DurationMinutes, g.Tolerance, g.Notes})
	}

	fears := sheet{name: "Fears", header: []any{"Date", "Trigger", "Intensity", "Response", "Notes"}}
	for _, f := range snap.Fears {
		fears.rows = append(fears.rows, []any{f.Date, f.Trigger, f.Intensity, f.Response, f.Notes})
	}

	return []sheet{commands, practice, potty, meals, naps, milestones, appts, weights, teeth, grooming, fears}
}
