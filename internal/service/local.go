package service

import (
	"context"
	"database/sql"

	"github.com/dukerupert/pawlog/internal/database"
	"github.com/dukerupert/pawlog/internal/store"
)

// LocalBackend wires the SQLite stores.
func LocalBackend(db *sql.DB) Backend {
	return Backend{
		Commands:     store.NewCommandStore(db),
		PracticeLogs: store.NewPracticeLogStore(db),
		PottyLogs:    store.NewPottyLogStore(db),
		MealLogs:     store.NewMealLogStore(db),
		NapLogs:      store.NewNapLogStore(db),
		Milestones:   store.NewMilestoneStore(db),
		Appointments: store.NewAppointmentStore(db),
		Weights:      store.NewWeightStore(db),
		Teeth:        store.NewToothStore(db),
		Grooming:     store.NewGroomingStore(db),
		Fears:        store.NewFearStore(db),
		Analytics:    store.NewAnalyticsStore(db),
		Clearer:      localClearer{db: db},
	}
}

type localClearer struct {
	db *sql.DB
}

func (c localClearer) ClearAll(ctx context.Context) error {
	return database.ClearAll(ctx, c.db)
}
