package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	PlanFree    = "FREE"
	PlanBasic   = "BASIC"
	PlanPremium = "PREMIUM"

	SubscriptionActive   = "ACTIVE"
	SubscriptionPastDue  = "PAST_DUE"
	SubscriptionCanceled = "CANCELED"
	SubscriptionExpired  = "EXPIRED"
)

type Subscription struct {
	bun.BaseModel `bun:"table:subscription"`
	UserID        string     `bun:"user_id,pk" json:"user_id"`
	Plan          string     `bun:"plan" json:"plan"`
	Status        string     `bun:"status" json:"status"`
	StartDate     time.Time  `bun:"start_date,default:current_timestamp" json:"start_date"`
	EndDate       *time.Time `bun:"end_date" json:"end_date"`
	AutoRenew     bool       `bun:"auto_renew,default:true" json:"auto_renew"`
	Provider      *string    `bun:"provider" json:"-"`
	ExternalID    *string    `bun:"external_id" json:"-"`
	UpdatedAt     time.Time  `bun:"updated_at" json:"-"`
}

func (s *Subscription) DaysUntilExpiry(now time.Time) *int {
	if s.EndDate == nil {
		return nil
	}
	days := int(s.EndDate.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}
