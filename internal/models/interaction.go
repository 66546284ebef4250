package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	InteractionText  = "TEXT"
	InteractionAudio = "AUDIO"
	InteractionImage = "IMAGE"

	ChannelApp      = "APP"
	ChannelWhatsApp = "WHATSAPP"
)

type Interaction struct {
	bun.BaseModel `bun:"table:interaction"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        string    `bun:"user_id" json:"user_id"`
	Type          string    `bun:"type" json:"type"`
	Channel       string    `bun:"channel" json:"channel"`
	Content       string    `bun:"content" json:"content"`
	AIResponse    string    `bun:"ai_response" json:"ai_response"`
	Score         int       `bun:"score" json:"score"`
	XP            int       `bun:"xp" json:"xp"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// InteractionStats is the aggregate view over a user's interaction history.
type InteractionStats struct {
	TotalInteractions int            `json:"total_interactions"`
	AverageScore      int            `json:"average_score"`
	TotalXPEarned     int            `json:"total_xp_earned"`
	TypeBreakdown     map[string]int `json:"type_breakdown"`
}

// Feedback is attached to interaction responses; the skill breakdown is
// derived from the score so it stays reproducible.
type Feedback struct {
	Breakdown   map[string]int `json:"breakdown"`
	Suggestions []string       `json:"suggestions"`
	NextStep    string         `json:"next_step"`
}
