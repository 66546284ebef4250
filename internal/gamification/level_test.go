package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromXP(t *testing.T) {
	assert.Equal(t, 1, LevelFromXP(0))
	assert.Equal(t, 1, LevelFromXP(999))
	assert.Equal(t, 2, LevelFromXP(1000))
	assert.Equal(t, 2, LevelFromXP(1999))
	assert.Equal(t, 3, LevelFromXP(2000))
	assert.Equal(t, 11, LevelFromXP(10500))
}

func TestLevelProgress(t *testing.T) {
	level := LevelProgress(0)
	assert.Equal(t, 1, level.CurrentLevel)
	assert.Equal(t, 0, level.ProgressXP)
	assert.Equal(t, 1000, level.NextLevelXP)
	assert.Equal(t, 0, level.ProgressPercentage)

	level = LevelProgress(2500)
	assert.Equal(t, 3, level.CurrentLevel)
	assert.Equal(t, 500, level.ProgressXP)
	assert.Equal(t, 3000, level.NextLevelXP)
	assert.Equal(t, 50, level.ProgressPercentage)

	level = LevelProgress(999)
	assert.Equal(t, 1, level.CurrentLevel)
	assert.Equal(t, 999, level.ProgressXP)
	assert.Equal(t, 100, level.ProgressPercentage)
}

func TestMaxCustomMissionXP(t *testing.T) {
	assert.Equal(t, 50, MaxCustomMissionXP(1))
	assert.Equal(t, 250, MaxCustomMissionXP(5))
	assert.Equal(t, 500, MaxCustomMissionXP(10))
}
