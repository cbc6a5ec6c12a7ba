package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/pawlog/internal/auth"
	"github.com/dukerupert/pawlog/internal/model"
)

type Service struct {
	backend Backend
	now     func() time.Time

	PottyLogs *Collection[model.PottyLog]
	MealLogs  *Collection[model.MealLog]
	NapLogs   *Collection[model.NapLog]
	Weights   *Collection[model.WeightEntry]
	Teeth     *Collection[model.ToothLog]
	Grooming  *Collection[model.GroomingLog]
	Fears     *Collection[model.FearLog]
}

func New(b Backend) *Service {
	return &Service{
		backend: b,
		now:     time.Now,

		PottyLogs: newCollection[model.PottyLog](model.CollectionPottyLogs, b.PottyLogs, func(ctx context.Context, l *model.PottyLog) {
			l.LoggedBy = loggedBy(ctx, l.LoggedBy)
		}),
		MealLogs: newCollection[model.MealLog](model.CollectionMealLogs, b.MealLogs, func(ctx context.Context, l *model.MealLog) {
			l.LoggedBy = loggedBy(ctx, l.LoggedBy)
		}),
		NapLogs: newCollection[model.NapLog](model.CollectionNapLogs, b.NapLogs, func(ctx context.Context, l *model.NapLog) {
			l.LoggedBy = loggedBy(ctx, l.LoggedBy)
		}),
		Weights:  newCollection[model.WeightEntry](model.CollectionWeightEntries, b.Weights, nil),
		Teeth:    newCollection[model.ToothLog](model.CollectionToothLogs, b.Teeth, nil),
		Grooming: newCollection[model.GroomingLog](model.CollectionGroomingLogs, b.Grooming, nil),
		Fears:    newCollection[model.FearLog](model.CollectionFearLogs, b.Fears, nil),
	}
}

// SetClock replaces the time source used for dates the service assigns.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Now is the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) today() string {
	return s.now().Format(model.DateLayout)
}

// loggedBy keeps an explicit attribution and otherwise takes the acting user.
func loggedBy(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return auth.UserName(ctx)
}

// Counts returns the number of records in each collection.
func (s *Service) Counts(ctx context.Context) (map[string]int, error) {
	counters := map[string]func(context.Context) (int, error){
		model.CollectionCommands:      s.backend.Commands.Count,
		model.CollectionPracticeLogs:  s.backend.PracticeLogs.Count,
		model.CollectionPottyLogs:     s.backend.PottyLogs.Count,
		model.CollectionMealLogs:      s.backend.MealLogs.Count,
		model.CollectionNapLogs:       s.backend.NapLogs.Count,
		model.CollectionMilestones:    s.backend.Milestones.Count,
		model.CollectionAppointments:  s.backend.Appointments.Count,
		model.CollectionWeightEntries: s.backend.Weights.Count,
		model.CollectionToothLogs:     s.backend.Teeth.Count,
		model.CollectionGroomingLogs:  s.backend.Grooming.Count,
		model.CollectionFearLogs:      s.backend.Fears.Count,
		model.CollectionAnalytics:     s.backend.Analytics.Count,
	}

	counts := make(map[string]int, len(counters))
	for name, count := range counters {
		n, err := count(ctx)
		if err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, nil
}

// ClearAll wipes every record collection through the backend. Settings and
// migration flags survive.
func (s *Service) ClearAll(ctx context.Context) error {
	if s.backend.Clearer == nil {
		return fmt.Errorf("backend does not support clearing")
	}
	return s.backend.Clearer.ClearAll(ctx)
}
