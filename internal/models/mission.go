package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MissionDaily  = "DAILY"
	MissionWeekly = "WEEKLY"
	MissionCustom = "CUSTOM"

	MissionStatusNotStarted = "NOT_STARTED"
	MissionStatusInProgress = "IN_PROGRESS"
	MissionStatusCompleted  = "COMPLETED"

	RequirementTextInteraction = "text_interaction"
	RequirementImageAnalysis   = "image_analysis"
)

// MissionRequirement is the jsonb completion predicate spec.
type MissionRequirement struct {
	Kind        string `json:"kind"`
	Count       int    `json:"count,omitempty"`
	MinScore    int    `json:"min_score,omitempty"`
	MinLength   int    `json:"min_length,omitempty"`
	MustContain string `json:"must_contain,omitempty"`
}

type Mission struct {
	bun.BaseModel `bun:"table:mission"`
	Slug          string             `bun:"slug,pk" json:"slug"`
	Type          string             `bun:"type" json:"type"`
	Title         string             `bun:"title" json:"title"`
	Description   string             `bun:"description" json:"description"`
	Difficulty    int                `bun:"difficulty" json:"difficulty"`
	Requirement   MissionRequirement `bun:"requirement,type:jsonb" json:"requirement"`
	XPReward      int                `bun:"xp_reward" json:"xp_reward"`
	CreatedBy     *string            `bun:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time          `bun:"created_at,default:current_timestamp" json:"-"`
}

// UserMission is one mission instance inside one period. A new period means a
// new row; the unique index (user_id, mission_slug, period_start) keeps
// duplicate completions out even under concurrent requests.
type UserMission struct {
	bun.BaseModel `bun:"table:user_mission"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID        string     `bun:"user_id" json:"user_id"`
	MissionSlug   string     `bun:"mission_slug" json:"mission_slug"`
	PeriodStart   time.Time  `bun:"period_start" json:"period_start"`
	StartedAt     time.Time  `bun:"started_at,default:current_timestamp" json:"started_at"`
	CompletedAt   *time.Time `bun:"completed_at" json:"completed_at"`
	Progress      int        `bun:"progress" json:"progress"`

	Mission *Mission `bun:"-" json:"mission,omitempty"`
}

func (um *UserMission) Status() string {
	if um == nil {
		return MissionStatusNotStarted
	}
	if um.CompletedAt != nil {
		return MissionStatusCompleted
	}
	return MissionStatusInProgress
}

type MissionWithStatus struct {
	Mission
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type MissionBoard struct {
	Missions       []MissionWithStatus `json:"missions"`
	TotalCompleted int                 `json:"total_completed"`
	TotalAvailable int                 `json:"total_available"`
	ResetTime      time.Time           `json:"reset_time"`
}

type MissionSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	XPReward    int    `json:"xp_reward"`
	Difficulty  string `json:"difficulty"`
}
