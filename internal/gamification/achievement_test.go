package gamification

import (
	"testing"

	"flirtquest/internal/models"

	"github.com/stretchr/testify/assert"
)

type fixedCounters struct {
	interactions int
	streak       int
	byMinScore   map[int]int
}

func (c fixedCounters) InteractionCount() int     { return c.interactions }
func (c fixedCounters) CurrentStreak() int        { return c.streak }
func (c fixedCounters) ScoresAtLeast(min int) int { return c.byMinScore[min] }

func TestEvaluateAchievements(t *testing.T) {
	counters := fixedCounters{
		interactions: 12,
		streak:       3,
		byMinScore:   map[int]int{80: 5},
	}

	defs := []models.Achievement{
		{Slug: "first-interaction", Kind: models.AchievementInteractionCount, Requirement: models.AchievementRequirement{Interactions: 1}},
		{Slug: "charmer", Kind: models.AchievementSkillLevel, Requirement: models.AchievementRequirement{HighScores: 5, MinScore: 80}},
		{Slug: "daily-warrior", Kind: models.AchievementStreak, Requirement: models.AchievementRequirement{DailyStreak: 7}},
	}

	results := EvaluateAchievements(defs, counters)
	assert.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.True(t, results[0].Qualified)

	assert.NoError(t, results[1].Err)
	assert.True(t, results[1].Qualified)

	assert.NoError(t, results[2].Err)
	assert.False(t, results[2].Qualified)
}

func TestEvaluateAchievementsIsolatesFailures(t *testing.T) {
	counters := fixedCounters{interactions: 10}

	defs := []models.Achievement{
		{Slug: "broken-kind", Kind: "SOMETHING_ELSE"},
		{Slug: "broken-requirement", Kind: models.AchievementInteractionCount, Requirement: models.AchievementRequirement{}},
		{Slug: "ok", Kind: models.AchievementInteractionCount, Requirement: models.AchievementRequirement{Interactions: 5}},
	}

	results := EvaluateAchievements(defs, counters)
	assert.Len(t, results, 3)

	assert.ErrorIs(t, results[0].Err, ErrUnknownAchievementKind)
	assert.False(t, results[0].Qualified)

	assert.ErrorIs(t, results[1].Err, ErrMalformedRequirement)
	assert.False(t, results[1].Qualified)

	// the bad definitions never block the good one
	assert.NoError(t, results[2].Err)
	assert.True(t, results[2].Qualified)
}

func TestAchievementProgress(t *testing.T) {
	counters := fixedCounters{
		interactions: 5,
		streak:       2,
		byMinScore:   map[int]int{80: 1},
	}

	interaction := models.Achievement{Kind: models.AchievementInteractionCount, Requirement: models.AchievementRequirement{Interactions: 10}}
	assert.Equal(t, 50, AchievementProgress(interaction, counters))

	skill := models.Achievement{Kind: models.AchievementSkillLevel, Requirement: models.AchievementRequirement{HighScores: 5, MinScore: 80}}
	assert.Equal(t, 20, AchievementProgress(skill, counters))

	streak := models.Achievement{Kind: models.AchievementStreak, Requirement: models.AchievementRequirement{DailyStreak: 7}}
	assert.Equal(t, 29, AchievementProgress(streak, counters))

	done := models.Achievement{Kind: models.AchievementInteractionCount, Requirement: models.AchievementRequirement{Interactions: 2}}
	assert.Equal(t, 100, AchievementProgress(done, counters))
}
