package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	AchievementInteractionCount = "INTERACTION_COUNT"
	AchievementSkillLevel       = "SKILL_LEVEL"
	AchievementStreak           = "STREAK"
)

// AchievementRequirement is the jsonb requirement column. Which fields are
// meaningful depends on the achievement kind.
type AchievementRequirement struct {
	Interactions int `json:"interactions,omitempty"`
	MinScore     int `json:"min_score,omitempty"`
	HighScores   int `json:"high_scores,omitempty"`
	DailyStreak  int `json:"daily_streak,omitempty"`
}

type Achievement struct {
	bun.BaseModel `bun:"table:achievement"`
	Slug          string                 `bun:"slug,pk" json:"slug"`
	Name          string                 `bun:"name" json:"name"`
	Description   string                 `bun:"description" json:"description"`
	Kind          string                 `bun:"kind" json:"kind"`
	Requirement   AchievementRequirement `bun:"requirement,type:jsonb" json:"requirement"`
	Icon          string                 `bun:"icon" json:"icon"`
	XPReward      int                    `bun:"xp_reward" json:"xp_reward"`
	Active        bool                   `bun:"active,default:true" json:"active"`
	CreatedAt     time.Time              `bun:"created_at,default:current_timestamp" json:"-"`
}

type UserAchievement struct {
	bun.BaseModel   `bun:"table:user_achievement"`
	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID          string    `bun:"user_id" json:"user_id"`
	AchievementSlug string    `bun:"achievement_slug" json:"achievement_slug"`
	UnlockedAt      time.Time `bun:"unlocked_at,default:current_timestamp" json:"unlocked_at"`

	Achievement *Achievement `bun:"-" json:"achievement,omitempty"`
}

// AchievementWithStatus decorates a catalog entry with the caller's unlock state.
type AchievementWithStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	Progress   int        `json:"progress"`
}
