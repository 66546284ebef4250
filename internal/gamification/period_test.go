package gamification

import (
	"testing"
	"time"

	"flirtquest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	p := NewPeriodResolver(loc)
	at := time.Date(2024, 1, 10, 15, 42, 7, 0, loc)

	start := p.StartOfDay(at)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, loc), start)

	end := p.EndOfDay(at)
	assert.Equal(t, time.Date(2024, 1, 10, 23, 59, 59, 999000000, loc), end)
}

func TestStartOfDayCrossesUTCBoundary(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	p := NewPeriodResolver(loc)
	// 01:00 UTC on the 11th is still 22:00 on the 10th in São Paulo
	at := time.Date(2024, 1, 11, 1, 0, 0, 0, time.UTC)

	start := p.StartOfDay(at)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, loc), start)
}

func TestStartOfWeekSundayBased(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	p := NewPeriodResolver(loc)

	// 2024-01-10 is a Wednesday
	wednesday := time.Date(2024, 1, 10, 12, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, loc), p.StartOfWeek(wednesday))
	assert.Equal(t, time.Date(2024, 1, 13, 23, 59, 59, 999000000, loc), p.EndOfWeek(wednesday))

	// a Sunday is its own week start
	sunday := time.Date(2024, 1, 7, 8, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, loc), p.StartOfWeek(sunday))

	// Saturday still belongs to the week that began the previous Sunday
	saturday := time.Date(2024, 1, 13, 23, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, loc), p.StartOfWeek(saturday))
}

func TestBoundsPerMissionType(t *testing.T) {
	p := NewPeriodResolver(time.UTC)
	at := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	dayStart, dayEnd := p.Bounds(models.MissionDaily, at)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), dayStart)
	assert.Equal(t, time.Date(2024, 1, 10, 23, 59, 59, 999000000, time.UTC), dayEnd)

	weekStart, weekEnd := p.Bounds(models.MissionWeekly, at)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), weekStart)
	assert.Equal(t, time.Date(2024, 1, 13, 23, 59, 59, 999000000, time.UTC), weekEnd)

	// custom missions share the daily window
	customStart, customEnd := p.Bounds(models.MissionCustom, at)
	assert.Equal(t, dayStart, customStart)
	assert.Equal(t, dayEnd, customEnd)
}

func TestNilLocationDefaultsToUTC(t *testing.T) {
	p := NewPeriodResolver(nil)
	assert.Equal(t, time.UTC, p.Location())
}
