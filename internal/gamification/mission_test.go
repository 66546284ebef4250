package gamification

import (
	"testing"

	"flirtquest/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMatchesRequirement(t *testing.T) {
	tests := []struct {
		name    string
		req     models.MissionRequirement
		content string
		score   int
		want    bool
	}{
		{"no constraints", models.MissionRequirement{}, "oi", 10, true},
		{"min length met", models.MissionRequirement{MinLength: 5}, "olá tudo bem", 10, true},
		{"min length short", models.MissionRequirement{MinLength: 15}, "oi tudo bem?", 10, false},
		// min length counts runes, not bytes
		{"min length runes", models.MissionRequirement{MinLength: 4}, "çãéí", 10, true},
		{"must contain present", models.MissionRequirement{MustContain: "?"}, "como você está?", 10, true},
		{"must contain missing", models.MissionRequirement{MustContain: "?"}, "como você está", 10, false},
		{"min score met", models.MissionRequirement{MinScore: 70}, "anything", 70, true},
		{"min score below", models.MissionRequirement{MinScore: 70}, "anything", 69, false},
		{
			"all constraints together",
			models.MissionRequirement{MinLength: 10, MustContain: "?", MinScore: 60},
			"qual é o seu estilo favorito?",
			65,
			true,
		},
		{
			"one failing constraint rejects",
			models.MissionRequirement{MinLength: 10, MustContain: "?", MinScore: 60},
			"qual é o seu estilo favorito?",
			55,
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesRequirement(tt.req, tt.content, tt.score))
		})
	}
}

func TestRequiredCount(t *testing.T) {
	assert.Equal(t, 1, RequiredCount(models.MissionRequirement{}))
	assert.Equal(t, 1, RequiredCount(models.MissionRequirement{Count: -2}))
	assert.Equal(t, 3, RequiredCount(models.MissionRequirement{Count: 3}))
}

func TestMissionSatisfied(t *testing.T) {
	req := models.MissionRequirement{Count: 3}
	assert.False(t, MissionSatisfied(req, 2))
	assert.True(t, MissionSatisfied(req, 3))
	assert.True(t, MissionSatisfied(req, 5))

	// missing count defaults to one
	assert.False(t, MissionSatisfied(models.MissionRequirement{}, 0))
	assert.True(t, MissionSatisfied(models.MissionRequirement{}, 1))
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(0, 3))
	assert.Equal(t, 33, Progress(1, 3))
	assert.Equal(t, 67, Progress(2, 3))
	assert.Equal(t, 100, Progress(3, 3))
	assert.Equal(t, 100, Progress(7, 3))
	// need below one is treated as one
	assert.Equal(t, 100, Progress(1, 0))
	assert.Equal(t, 0, Progress(0, 0))
}
