package gamification

import (
	"errors"
	"fmt"

	"flirtquest/internal/models"
)

var ErrUnknownAchievementKind = errors.New("unknown achievement kind")
var ErrMalformedRequirement = errors.New("malformed achievement requirement")

// CounterView exposes the activity counters the evaluator reads. The caller
// decides where the numbers come from (live queries, a snapshot, a test fake).
type CounterView interface {
	InteractionCount() int
	ScoresAtLeast(min int) int
	CurrentStreak() int
}

// EvaluationResult is the per-definition outcome of an evaluator pass.
// A failed definition never stops the rest of the batch.
type EvaluationResult struct {
	Achievement models.Achievement
	Qualified   bool
	Err         error
}

// EvaluateAchievements checks every definition against the counters and
// collects one result per definition.
func EvaluateAchievements(defs []models.Achievement, counters CounterView) []EvaluationResult {
	results := make([]EvaluationResult, 0, len(defs))
	for _, def := range defs {
		qualified, err := evaluate(def, counters)
		results = append(results, EvaluationResult{Achievement: def, Qualified: qualified, Err: err})
	}
	return results
}

func evaluate(def models.Achievement, counters CounterView) (bool, error) {
	switch def.Kind {
	case models.AchievementInteractionCount:
		if def.Requirement.Interactions < 1 {
			return false, fmt.Errorf("%w: %s", ErrMalformedRequirement, def.Slug)
		}
		return counters.InteractionCount() >= def.Requirement.Interactions, nil
	case models.AchievementSkillLevel:
		if def.Requirement.MinScore < 1 || def.Requirement.HighScores < 1 {
			return false, fmt.Errorf("%w: %s", ErrMalformedRequirement, def.Slug)
		}
		return counters.ScoresAtLeast(def.Requirement.MinScore) >= def.Requirement.HighScores, nil
	case models.AchievementStreak:
		if def.Requirement.DailyStreak < 1 {
			return false, fmt.Errorf("%w: %s", ErrMalformedRequirement, def.Slug)
		}
		return counters.CurrentStreak() >= def.Requirement.DailyStreak, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownAchievementKind, def.Kind)
	}
}

// AchievementProgress is the 0-100 completion percentage of a definition
// against the current counters.
func AchievementProgress(def models.Achievement, counters CounterView) int {
	var have, need int
	switch def.Kind {
	case models.AchievementInteractionCount:
		have, need = counters.InteractionCount(), def.Requirement.Interactions
	case models.AchievementSkillLevel:
		have, need = counters.ScoresAtLeast(def.Requirement.MinScore), def.Requirement.HighScores
	case models.AchievementStreak:
		have, need = counters.CurrentStreak(), def.Requirement.DailyStreak
	}
	return Progress(have, need)
}
