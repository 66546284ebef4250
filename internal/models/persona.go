package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	PersonalityPlayful   = "PLAYFUL"
	PersonalityRomantic  = "ROMANTIC"
	PersonalityConfident = "CONFIDENT"
)

// Persona is the per-user configuration of the virtual coach character.
type Persona struct {
	bun.BaseModel       `bun:"table:persona"`
	UserID              string    `bun:"user_id,pk" json:"user_id"`
	Name                string    `bun:"name" json:"name"`
	Personality         string    `bun:"personality" json:"personality"`
	Interests           []string  `bun:"interests,type:jsonb" json:"interests"`
	CommunicationStyle  string    `bun:"communication_style" json:"communication_style"`
	ResponseLength      string    `bun:"response_length" json:"response_length"`
	HumorLevel          int       `bun:"humor_level" json:"humor_level"`
	FlirtinessLevel     int       `bun:"flirtiness_level" json:"flirtiness_level"`
	SupportivenessLevel int       `bun:"supportiveness_level" json:"supportiveness_level"`
	UpdatedAt           time.Time `bun:"updated_at" json:"-"`
}
