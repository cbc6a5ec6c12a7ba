// Package service holds the record services shared by the local SQLite
// backend and the remote REST backend.
package service

import (
	"context"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

// Repo is the storage contract every record collection satisfies.
// GetByID returns (nil, nil) for an absent id; Update returns a
// *model.NotFoundError; Delete of an absent id is a no-op.
type Repo[T any] interface {
	Create(ctx context.Context, rec *T) (*T, error)
	GetByID(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context) ([]T, error)
	Update(ctx context.Context, id int64, rec *T) (*T, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type CommandRepo interface {
	Repo[model.Command]
	GetByName(ctx context.Context, name string) (*model.Command, error)
	UpdateProgress(ctx context.Context, id int64, p model.CommandProgress, expectedVersion int64) error
}

type PracticeLogRepo interface {
	Repo[model.PracticeLog]
	ListByCommand(ctx context.Context, commandID int64) ([]model.PracticeLog, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.PracticeLog, error)
}

type PottyLogRepo interface {
	Repo[model.PottyLog]
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.PottyLog, error)
}

type AppointmentRepo interface {
	Repo[model.Appointment]
	ListUpcoming(ctx context.Context, fromDate string) ([]model.Appointment, error)
}

type AnalyticsRepo interface {
	Create(ctx context.Context, p model.WeeklyProgress) (*model.AnalyticsSnapshot, error)
	List(ctx context.Context) ([]model.AnalyticsSnapshot, error)
	Count(ctx context.Context) (int, error)
}

// Clearer wipes every record collection. Settings are not records.
type Clearer interface {
	ClearAll(ctx context.Context) error
}

// Backend bundles one repository per collection.
type Backend struct {
	Commands     CommandRepo
	PracticeLogs PracticeLogRepo
	PottyLogs    PottyLogRepo
	MealLogs     Repo[model.MealLog]
	NapLogs      Repo[model.NapLog]
	Milestones   Repo[model.Milestone]
	Appointments AppointmentRepo
	Weights      Repo[model.WeightEntry]
	Teeth        Repo[model.ToothLog]
	Grooming     Repo[model.GroomingLog]
	Fears        Repo[model.FearLog]
	Analytics    AnalyticsRepo
	Clearer      Clearer
}
