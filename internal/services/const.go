package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMissionLock = errors.New("mission locked")
var ErrAchievementLock = errors.New("achievement locked")
var ErrMissionAlreadyActive = errors.New("mission already started this period")
var ErrMissionAlreadyCompleted = errors.New("mission already completed this period")
var ErrMissionNotStarted = errors.New("mission not started")
var ErrMissionNotSatisfied = errors.New("mission requirement not met")
var ErrAchievementLocked = errors.New("achievement requirement not met")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrEmailTaken = errors.New("email already registered")
var ErrInactiveUser = errors.New("account deactivated")
var ErrContentFlagged = errors.New("content rejected by moderation")
var ErrTokenRevoked = errors.New("refresh token revoked")

const (
	CONFIG_SERVER_MODE              = "SERVER_MODE"
	CONFIG_TIMEZONE                 = "TIMEZONE"
	CONFIG_LEADERBOARD_LIMIT        = "LEADERBOARD_LIMIT"
	CONFIG_DAILY_INTERACTION_LIMIT  = "DAILY_INTERACTION_LIMIT"
	CONFIG_CUSTOM_MISSIONS_PER_WEEK = "CUSTOM_MISSIONS_PER_WEEK"
	CONFIG_AI_MODEL                 = "AI_MODEL"
	CONFIG_AI_MAX_TOKENS            = "AI_MAX_TOKENS"
	CONFIG_STREAK_SWEEP_CRON        = "STREAK_SWEEP_CRON"
	CONFIG_WEEKLY_RESET_CRON        = "WEEKLY_RESET_CRON"
	CONFIG_FREE_DAILY_MESSAGES      = "FREE_DAILY_MESSAGES"
	CONFIG_PREMIUM_DAILY_MESSAGES   = "PREMIUM_DAILY_MESSAGES"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	LEADERBOARD_DEFAULT_LIMIT      = 20
	DAILY_INTERACTION_DEFAULT      = 50
	CUSTOM_MISSIONS_WEEKLY_DEFAULT = 3

	INTERACTION_RATE_LIMIT_PER_MINUTE = 20
	AUTH_RATE_LIMIT_PER_MINUTE        = 10

	ACCESS_TOKEN_TTL  = 7 * 24 * time.Hour
	REFRESH_TOKEN_TTL = 30 * 24 * time.Hour

	CACHE_TTL_5_SECONDS = 5 * time.Second
	CACHE_TTL_1_MIN     = 1 * time.Minute
	CACHE_TTL_5_MINS    = 5 * time.Minute
	CACHE_TTL_15_MINS   = 15 * time.Minute
	CACHE_TTL_1_HOUR    = 1 * time.Hour
	CACHE_TTL_1_DAY     = 24 * time.Hour
)

func LockKeyUserMission(userID, missionSlug string) string {
	return fmt.Sprintf("lock:user-mission:%s:%s", userID, missionSlug)
}

func LockKeyUserAchievement(userID string) string {
	return fmt.Sprintf("lock:user-achievement:%s", userID)
}

func LockKeyUserInteraction(userID string) string {
	return fmt.Sprintf("lock:user-interaction:%s", userID)
}

// db
func DBKeyUser(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func DBKeyMe(userID string) string {
	return fmt.Sprintf("me:%s", userID)
}

func DBKeyUserStats(userID string) string {
	return fmt.Sprintf("user:%s:stats", userID)
}

func DBKeyUserAchievements(userID string) string {
	return fmt.Sprintf("user:%s:achievements", userID)
}

func DBKeyMissionBoard(userID string) string {
	return fmt.Sprintf("user:%s:missions", userID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyLeaderboardPage(period string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:page:%d", period, limit)
}

func RateKeyInteraction(userID string) string {
	return fmt.Sprintf("rate:interaction:%s", userID)
}

func RateKeyAuth(ip string) string {
	return fmt.Sprintf("rate:auth:%s", ip)
}
