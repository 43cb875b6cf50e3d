package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-turnos/internal/calendar"
	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
)

type WeeklyCalendar struct {
	repo       domain.Repository
	aggregator *calendar.Aggregator
}

func NewWeeklyCalendar(
	repo domain.Repository,
	aggregator *calendar.Aggregator,
) *WeeklyCalendar {
	return &WeeklyCalendar{
		repo:       repo,
		aggregator: aggregator,
	}
}

func (uc *WeeklyCalendar) Execute(ctx context.Context) (calendar.Grid, error) {
	apps, err := uc.repo.CalendarSnapshot(ctx)
	if err != nil {
		return calendar.Grid{}, err
	}
	return uc.aggregator.WeeklyGrid(apps), nil
}
