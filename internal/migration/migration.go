// Package migration imports records from the legacy browser key/value
// storage into the current backend, one record family at a time.
package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukerupert/pawlog/internal/auth"
	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
)

const (
	FlagCompleted = "migration_completed"
	flagPrefix    = "migration"
)

// Family names, in the order they run.
const (
	FamilyCommands     = "commands"
	FamilyLogs         = "logs"
	FamilyMilestones   = "milestones"
	FamilyAppointments = "appointments"
	FamilyWeight       = "weight"
	FamilyTooth        = "tooth"
	FamilyGrooming     = "grooming"
	FamilyFear         = "fear"
)

func familyFlag(family string) string {
	return flagPrefix + ":" + family
}

// Flags persists migration progress. store.SettingsStore satisfies it.
type Flags interface {
	Flag(ctx context.Context, key string) (bool, error)
	SetFlag(ctx context.Context, key string) error
	ClearFlags(ctx context.Context, prefix string) (int, error)
}

// Error reports the family that failed. Families before it stay migrated.
type Error struct {
	Family string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("migrate %s: %v", e.Family, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Options struct {
	// AllFamilies migrates training, milestone and appointment data too.
	// Local-only installs keep those in the browser and migrate health
	// logs only.
	AllFamilies bool
}

// Result describes one Run.
type Result struct {
	AlreadyDone bool           `json:"alreadyDone"`
	Migrated    map[string]int `json:"migrated"`
	Skipped     []string       `json:"skipped,omitempty"`
}

type Migrator struct {
	src   Source
	svc   *service.Service
	flags Flags
	opts  Options

	// commandIDs maps legacy command ids to current ones.
	commandIDs map[string]int64
}

func New(src Source, svc *service.Service, flags Flags, opts Options) *Migrator {
	return &Migrator{src: src, svc: svc, flags: flags, opts: opts}
}

type step struct {
	family string
	run    func(ctx context.Context) (int, error)
}

func (m *Migrator) steps() []step {
	health := []step{
		{FamilyWeight, m.migrateWeights},
		{FamilyTooth, m.migrateTeeth},
		{FamilyGrooming, m.migrateGrooming},
		{FamilyFear, m.migrateFears},
	}
	if !m.opts.AllFamilies {
		return health
	}
	return append([]step{
		{FamilyCommands, m.migrateCommands},
		{FamilyLogs, m.migrateLogs},
		{FamilyMilestones, m.migrateMilestones},
		{FamilyAppointments, m.migrateAppointments},
	}, health...)
}

// Run migrates every family whose flag is unset. It is a no-op once the
// completion flag is set. On failure the failing family is rolled back and
// left unflagged so a later Run retries it without duplicating the others.
func (m *Migrator) Run(ctx context.Context) (*Result, error) {
	done, err := m.flags.Flag(ctx, FlagCompleted)
	if err != nil {
		return nil, err
	}
	if done {
		slog.Info("legacy migration already completed")
		return &Result{AlreadyDone: true, Migrated: map[string]int{}}, nil
	}

	if raw, err := m.src.Load(keyCurrentUser); err == nil {
		if name := currentUser(raw); name != "" {
			ctx = auth.WithUser(ctx, name)
		}
	}

	res := &Result{Migrated: make(map[string]int)}
	for _, st := range m.steps() {
		flagged, err := m.flags.Flag(ctx, familyFlag(st.family))
		if err != nil {
			return res, &Error{Family: st.family, Err: err}
		}
		if flagged {
			res.Skipped = append(res.Skipped, st.family)
			continue
		}

		n, err := st.run(ctx)
		if err != nil {
			slog.Error("legacy migration failed", "family", st.family, "error", err)
			return res, &Error{Family: st.family, Err: err}
		}
		if err := m.flags.SetFlag(ctx, familyFlag(st.family)); err != nil {
			return res, &Error{Family: st.family, Err: err}
		}
		res.Migrated[st.family] = n
		slog.Info("migrated legacy family", "family", st.family, "records", n)
	}

	if err := m.flags.SetFlag(ctx, FlagCompleted); err != nil {
		return res, err
	}
	return res, nil
}

// ResetFlags forgets all migration progress. Dev use only.
func (m *Migrator) ResetFlags(ctx context.Context) error {
	n, err := m.flags.ClearFlags(ctx, flagPrefix)
	if err != nil {
		return err
	}
	slog.Info("cleared migration flags", "count", n)
	return nil
}

// batch remembers what a family inserted so a failure can undo it.
type batch struct {
	undo []func(context.Context) error
}

func (b *batch) added(del func(context.Context, int64) error, id int64) {
	b.undo = append(b.undo, func(ctx context.Context) error { return del(ctx, id) })
}

func (b *batch) rollback(ctx context.Context, family string) {
	for i := len(b.undo) - 1; i >= 0; i-- {
		if err := b.undo[i](ctx); err != nil {
			slog.Error("roll back migrated record", "family", family, "error", err)
		}
	}
}

// migrateEach decodes the array under key and adds every element, undoing
// the family's inserts if any element fails.
func migrateEach(ctx context.Context, src Source, key, family string, add func(context.Context, element, *batch) error) (int, error) {
	raw, err := src.Load(key)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	elems, err := decodeElements(raw)
	if err != nil {
		return 0, err
	}

	b := &batch{}
	for i, e := range elems {
		if err := add(ctx, e, b); err != nil {
			b.rollback(ctx, family)
			return 0, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return len(b.undo), nil
}

func addRecord[T any](ctx context.Context, b *batch, rec *T, add func(context.Context, *T) (*T, error), del func(context.Context, int64) error, id func(*T) int64) error {
	created, err := add(ctx, rec)
	if err != nil {
		return err
	}
	b.added(del, id(created))
	return nil
}

func recordError(collection, reason string) error {
	return &model.WriteError{Collection: collection, Reason: reason}
}

// Status reports which families are flagged as migrated.
type Status struct {
	Completed bool            `json:"completed"`
	Families  map[string]bool `json:"families"`
}

func (m *Migrator) Status(ctx context.Context) (*Status, error) {
	done, err := m.flags.Flag(ctx, FlagCompleted)
	if err != nil {
		return nil, err
	}
	st := &Status{Completed: done, Families: make(map[string]bool)}
	for _, s := range m.steps() {
		flagged, err := m.flags.Flag(ctx, familyFlag(s.family))
		if err != nil {
			return nil, err
		}
		st.Families[s.family] = flagged
	}
	return st, nil
}
