package gamification

import (
	"time"

	"flirtquest/internal/models"
)

// PeriodResolver computes daily and weekly period boundaries in an explicit
// timezone. Weeks start on Sunday.
type PeriodResolver struct {
	loc *time.Location
}

func NewPeriodResolver(loc *time.Location) PeriodResolver {
	if loc == nil {
		loc = time.UTC
	}
	return PeriodResolver{loc}
}

func (p PeriodResolver) Location() *time.Location {
	return p.loc
}

func (p PeriodResolver) StartOfDay(t time.Time) time.Time {
	t = t.In(p.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.loc)
}

func (p PeriodResolver) EndOfDay(t time.Time) time.Time {
	return p.StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

func (p PeriodResolver) StartOfWeek(t time.Time) time.Time {
	start := p.StartOfDay(t)
	return start.AddDate(0, 0, -int(start.Weekday()))
}

func (p PeriodResolver) EndOfWeek(t time.Time) time.Time {
	return p.StartOfWeek(t).AddDate(0, 0, 7).Add(-time.Millisecond)
}

// Bounds returns the current period window for a mission type. Custom
// missions reset daily, like the daily board.
func (p PeriodResolver) Bounds(missionType string, t time.Time) (time.Time, time.Time) {
	if missionType == models.MissionWeekly {
		return p.StartOfWeek(t), p.EndOfWeek(t)
	}
	return p.StartOfDay(t), p.EndOfDay(t)
}
