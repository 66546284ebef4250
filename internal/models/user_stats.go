package models

import (
	"time"

	"github.com/uptrace/bun"
)

type UserStats struct {
	bun.BaseModel     `bun:"table:user_stats"`
	UserID            string     `bun:"user_id,pk" json:"user_id"`
	TotalXP           int        `bun:"total_xp" json:"total_xp"`
	TotalInteractions int        `bun:"total_interactions" json:"total_interactions"`
	CurrentStreak     int        `bun:"current_streak" json:"current_streak"`
	LongestStreak     int        `bun:"longest_streak" json:"longest_streak"`
	LastActiveDate    *time.Time `bun:"last_active_date" json:"last_active_date"`
	UpdatedAt         time.Time  `bun:"updated_at" json:"-"`
}

type StreakInfo struct {
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	StreakType       string     `json:"streak_type"`
}
