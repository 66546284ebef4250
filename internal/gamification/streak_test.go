package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextStreak(t *testing.T) {
	p := NewPeriodResolver(time.UTC)
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

	t.Run("first completion starts at one", func(t *testing.T) {
		assert.Equal(t, 1, NextStreak(p, nil, now, 0))
	})

	t.Run("same day keeps the streak", func(t *testing.T) {
		prev := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, 4, NextStreak(p, &prev, now, 4))
	})

	t.Run("same day with broken counter recovers to one", func(t *testing.T) {
		prev := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, 1, NextStreak(p, &prev, now, 0))
	})

	t.Run("yesterday extends", func(t *testing.T) {
		prev := time.Date(2024, 1, 9, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, 5, NextStreak(p, &prev, now, 4))
	})

	t.Run("two days ago resets", func(t *testing.T) {
		prev := time.Date(2024, 1, 8, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, 1, NextStreak(p, &prev, now, 9))
	})
}

func TestStreakExpired(t *testing.T) {
	p := NewPeriodResolver(time.UTC)
	now := time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC)

	assert.False(t, StreakExpired(p, nil, now))

	yesterday := time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)
	assert.False(t, StreakExpired(p, &yesterday, now))

	today := time.Date(2024, 1, 10, 0, 30, 0, 0, time.UTC)
	assert.False(t, StreakExpired(p, &today, now))

	twoDaysAgo := time.Date(2024, 1, 8, 23, 0, 0, 0, time.UTC)
	assert.True(t, StreakExpired(p, &twoDaysAgo, now))
}
