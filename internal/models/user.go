package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	AuthProviderEmail  = "EMAIL"
	AuthProviderGoogle = "GOOGLE"
	AuthProviderApple  = "APPLE"
)

type User struct {
	bun.BaseModel `bun:"table:app_user"`
	ID            string     `bun:"id,pk" json:"id"`
	Email         string     `bun:"email,unique" json:"email"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	FirstName     string     `bun:"first_name" json:"first_name"`
	LastName      string     `bun:"last_name" json:"last_name"`
	DateOfBirth   *time.Time `bun:"date_of_birth" json:"date_of_birth"`
	Gender        string     `bun:"gender" json:"gender"`
	PhoneNumber   *string    `bun:"phone_number" json:"phone_number"`
	PhotoURL      *string    `bun:"photo_url" json:"photo_url"`
	AuthProvider  string     `bun:"auth_provider" json:"-"`
	EmailVerified bool       `bun:"email_verified" json:"email_verified"`
	IsActive      bool       `bun:"is_active,default:true" json:"is_active"`
	LastLoginAt   *time.Time `bun:"last_login_at" json:"last_login_at"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at" json:"-"`

	Subscription *Subscription `bun:"-" json:"subscription,omitempty"`
	Persona      *Persona      `bun:"-" json:"persona,omitempty"`
	IsNewUser    bool          `bun:"-" json:"is_new_user"`
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
