package gamification

import "math"

// XPPerLevel is the fixed XP cost of every level.
const XPPerLevel = 1000

type Level struct {
	CurrentLevel       int `json:"current_level"`
	CurrentXP          int `json:"current_xp"`
	ProgressXP         int `json:"progress_xp"`
	NextLevelXP        int `json:"next_level_xp"`
	ProgressPercentage int `json:"progress_percentage"`
}

// LevelFromXP returns the level a cumulative XP total corresponds to.
// XP 0 is level 1.
func LevelFromXP(totalXP int) int {
	return totalXP/XPPerLevel + 1
}

// LevelProgress expands a cumulative XP total into level and
// progress-within-level numbers.
func LevelProgress(totalXP int) Level {
	level := LevelFromXP(totalXP)
	progressXP := totalXP - (level-1)*XPPerLevel

	return Level{
		CurrentLevel:       level,
		CurrentXP:          totalXP,
		ProgressXP:         progressXP,
		NextLevelXP:        level * XPPerLevel,
		ProgressPercentage: int(math.Round(float64(progressXP) / XPPerLevel * 100)),
	}
}

// MaxCustomMissionXP caps the reward a user may attach to a custom mission.
func MaxCustomMissionXP(level int) int {
	return level * 50
}
